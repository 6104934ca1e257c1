package pib

import (
	"sync"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

func init() {
	RegisterBackend("pib-memory", func(location string) (Backend, error) {
		return newMemoryBackend(), nil
	})
}

type memoryBackend struct {
	mu sync.RWMutex

	identities    map[string]*Identity
	defaultIdent  string
	keys          map[string]*Key
	keysByIdent   map[string][]string
	defaultKey    map[string]string // identity name -> key name
	certs         map[string]*Certificate
	certsByKey    map[string][]string
	defaultCert   map[string]string // key name -> cert name
	tpmLocator    string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		identities:  map[string]*Identity{},
		keys:        map[string]*Key{},
		keysByIdent: map[string][]string{},
		defaultKey:  map[string]string{},
		certs:       map[string]*Certificate{},
		certsByKey:  map[string][]string{},
		defaultCert: map[string]string{},
	}
}

func (b *memoryBackend) Identities() ([]Identity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Identity, 0, len(b.identities))
	for _, id := range b.identities {
		out = append(out, *id)
	}
	return out, nil
}

func (b *memoryBackend) GetIdentity(name enc.Name) (*Identity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.identities[name.String()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *id
	return &cp, nil
}

func (b *memoryBackend) AddIdentity(name enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := name.String()
	if _, ok := b.identities[key]; ok {
		return nil
	}
	b.identities[key] = &Identity{Name: name}
	if b.defaultIdent == "" {
		b.defaultIdent = key
		b.identities[key].IsDefault = true
	}
	return nil
}

func (b *memoryBackend) RemoveIdentity(name enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := name.String()
	delete(b.identities, key)
	for _, kn := range b.keysByIdent[key] {
		b.removeKeyLocked(kn)
	}
	delete(b.keysByIdent, key)
	delete(b.defaultKey, key)
	if b.defaultIdent == key {
		b.defaultIdent = ""
	}
	return nil
}

func (b *memoryBackend) SetDefaultIdentity(name enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := name.String()
	if _, ok := b.identities[key]; !ok {
		return ErrNotFound
	}
	if prev, ok := b.identities[b.defaultIdent]; ok {
		prev.IsDefault = false
	}
	b.defaultIdent = key
	b.identities[key].IsDefault = true
	return nil
}

func (b *memoryBackend) DefaultIdentity() (*Identity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	id, ok := b.identities[b.defaultIdent]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *id
	return &cp, nil
}

func (b *memoryBackend) KeysOf(identity enc.Name) ([]Key, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Key
	for _, kn := range b.keysByIdent[identity.String()] {
		out = append(out, *b.keys[kn])
	}
	return out, nil
}

func (b *memoryBackend) GetKey(keyName enc.Name) (*Key, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	k, ok := b.keys[keyName.String()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (b *memoryBackend) AddKey(identity enc.Name, key Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idKey := identity.String()
	keyKey := key.Name.String()
	if _, ok := b.keys[keyKey]; ok {
		return nil
	}
	cp := key
	b.keys[keyKey] = &cp
	b.keysByIdent[idKey] = append(b.keysByIdent[idKey], keyKey)
	if _, ok := b.defaultKey[idKey]; !ok {
		b.defaultKey[idKey] = keyKey
		cp.IsDefault = true
		b.keys[keyKey] = &cp
	}
	return nil
}

func (b *memoryBackend) removeKeyLocked(keyName string) {
	for _, cn := range b.certsByKey[keyName] {
		delete(b.certs, cn)
	}
	delete(b.certsByKey, keyName)
	delete(b.keys, keyName)
}

func (b *memoryBackend) RemoveKey(keyName enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeKeyLocked(keyName.String())
	return nil
}

func (b *memoryBackend) SetDefaultKey(identity, keyName enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	idKey := identity.String()
	keyKey := keyName.String()
	k, ok := b.keys[keyKey]
	if !ok {
		return ErrNotFound
	}
	if prev, ok := b.defaultKey[idKey]; ok {
		if pk, ok := b.keys[prev]; ok {
			pk.IsDefault = false
		}
	}
	b.defaultKey[idKey] = keyKey
	k.IsDefault = true
	return nil
}

func (b *memoryBackend) DefaultKey(identity enc.Name) (*Key, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	kn, ok := b.defaultKey[identity.String()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b.keys[kn]
	return &cp, nil
}

func (b *memoryBackend) CertsOf(keyName enc.Name) ([]Certificate, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Certificate
	for _, cn := range b.certsByKey[keyName.String()] {
		out = append(out, *b.certs[cn])
	}
	return out, nil
}

func (b *memoryBackend) GetCert(certName enc.Name) (*Certificate, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.certs[certName.String()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (b *memoryBackend) AddCert(keyName enc.Name, cert Certificate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	keyKey := keyName.String()
	certKey := cert.Name.String()
	cp := cert
	b.certs[certKey] = &cp
	b.certsByKey[keyKey] = append(b.certsByKey[keyKey], certKey)
	if _, ok := b.defaultCert[keyKey]; !ok {
		b.defaultCert[keyKey] = certKey
		cp.IsDefault = true
		b.certs[certKey] = &cp
	}
	return nil
}

func (b *memoryBackend) RemoveCert(certName enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.certs, certName.String())
	return nil
}

func (b *memoryBackend) SetDefaultCert(keyName, certName enc.Name) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	keyKey := keyName.String()
	certKey := certName.String()
	c, ok := b.certs[certKey]
	if !ok {
		return ErrNotFound
	}
	if prev, ok := b.defaultCert[keyKey]; ok {
		if pc, ok := b.certs[prev]; ok {
			pc.IsDefault = false
		}
	}
	b.defaultCert[keyKey] = certKey
	c.IsDefault = true
	return nil
}

func (b *memoryBackend) DefaultCert(keyName enc.Name) (*Certificate, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	cn, ok := b.defaultCert[keyName.String()]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b.certs[cn]
	return &cp, nil
}

func (b *memoryBackend) TpmLocator() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tpmLocator, nil
}

func (b *memoryBackend) SetTpmLocator(locator string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tpmLocator = locator
	return nil
}

func (b *memoryBackend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identities = map[string]*Identity{}
	b.defaultIdent = ""
	b.keys = map[string]*Key{}
	b.keysByIdent = map[string][]string{}
	b.defaultKey = map[string]string{}
	b.certs = map[string]*Certificate{}
	b.certsByKey = map[string][]string{}
	b.defaultCert = map[string]string{}
	return nil
}
