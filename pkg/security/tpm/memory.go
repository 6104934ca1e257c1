package tpm

import (
	"fmt"
	"sync"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

func init() {
	RegisterBackend("tpm-memory", func(location string) (Backend, error) {
		return newMemoryBackend(), nil
	})
}

// memoryBackend keeps private keys in a process-local map. Used for
// tests and ephemeral identities; nothing survives process exit.
type memoryBackend struct {
	mu   sync.RWMutex
	keys map[string]*keys.PrivateKey
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{keys: map[string]*keys.PrivateKey{}}
}

func (b *memoryBackend) HasKey(keyName enc.Name) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.keys[keyName.String()]
	return ok
}

func (b *memoryBackend) GetKey(keyName enc.Name) (*keys.PrivateKey, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	k, ok := b.keys[keyName.String()]
	if !ok {
		return nil, fmt.Errorf("tpm: no key named %s", keyName)
	}
	return k, nil
}

func (b *memoryBackend) CreateKey(keyName enc.Name, params keys.KeyParams) (*keys.PrivateKey, error) {
	k, err := keys.GeneratePrivateKey(params)
	if err != nil {
		return nil, err
	}
	if err := b.ImportKey(keyName, k); err != nil {
		return nil, err
	}
	return k, nil
}

func (b *memoryBackend) ImportKey(keyName enc.Name, key *keys.PrivateKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	name := keyName.String()
	if _, exists := b.keys[name]; exists {
		return fmt.Errorf("tpm: key %s already exists", keyName)
	}
	b.keys[name] = key
	return nil
}

func (b *memoryBackend) DeleteKey(keyName enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.keys, keyName.String())
	return nil
}

func (b *memoryBackend) IsTerminalMode() bool { return false }
