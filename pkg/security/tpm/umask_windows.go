//go:build windows

package tpm

// withRestrictiveUmask is a no-op on Windows, which has no process
// umask; ACLs on the store directory are relied on instead.
func withRestrictiveUmask(fn func() error) error {
	return fn()
}
