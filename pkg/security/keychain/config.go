package keychain

import (
	"fmt"

	"github.com/pelletier/go-toml"
)

// NewFromConfigFile constructs a KeyChain from an explicitly-named TOML
// config file, reading the pib.locator and tpm.locator keys (falling
// back to memory-backed defaults for whichever is absent). This is not
// config-file discovery: the caller names the file; nothing here
// searches default paths or environment-derived locations.
func NewFromConfigFile(path string, allowReset bool) (*KeyChain, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keychain: loading config %s: %w", path, err)
	}
	pibLocator := DefaultPibLocator
	if v, ok := tree.Get("pib.locator").(string); ok {
		pibLocator = v
	}
	tpmLocator := DefaultTpmLocator
	if v, ok := tree.Get("tpm.locator").(string); ok {
		tpmLocator = v
	}
	return New(pibLocator, tpmLocator, allowReset)
}
