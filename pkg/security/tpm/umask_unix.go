//go:build !windows

package tpm

import "golang.org/x/sys/unix"

// withRestrictiveUmask clears group/world permission bits for the
// duration of fn, so a private-key file is never briefly readable by
// anyone but its owner during creation (os.WriteFile's open-create
// still goes through the process umask).
func withRestrictiveUmask(fn func() error) error {
	old := unix.Umask(0o077)
	defer unix.Umask(old)
	return fn()
}
