package pib

import "github.com/named-data/ndn-keychain/pkg/enc"

// Pib is the front-facing facade over a single Backend, resolved from
// a locator URI ("scheme:location") at construction time.
type Pib struct {
	backend Backend
}

// New resolves locator against the backend registry.
func New(locator string) (*Pib, error) {
	b, err := resolve(locator)
	if err != nil {
		return nil, err
	}
	return &Pib{backend: b}, nil
}

func (p *Pib) Identities() ([]Identity, error) { return p.backend.Identities() }

func (p *Pib) GetIdentity(name enc.Name) (*Identity, error) { return p.backend.GetIdentity(name) }

func (p *Pib) AddIdentity(name enc.Name) error { return p.backend.AddIdentity(name) }

func (p *Pib) RemoveIdentity(name enc.Name) error { return p.backend.RemoveIdentity(name) }

func (p *Pib) SetDefaultIdentity(name enc.Name) error { return p.backend.SetDefaultIdentity(name) }

func (p *Pib) DefaultIdentity() (*Identity, error) { return p.backend.DefaultIdentity() }

func (p *Pib) KeysOf(identity enc.Name) ([]Key, error) { return p.backend.KeysOf(identity) }

func (p *Pib) GetKey(keyName enc.Name) (*Key, error) { return p.backend.GetKey(keyName) }

func (p *Pib) AddKey(identity enc.Name, key Key) error { return p.backend.AddKey(identity, key) }

func (p *Pib) RemoveKey(keyName enc.Name) error { return p.backend.RemoveKey(keyName) }

func (p *Pib) SetDefaultKey(identity, keyName enc.Name) error {
	return p.backend.SetDefaultKey(identity, keyName)
}

func (p *Pib) DefaultKey(identity enc.Name) (*Key, error) { return p.backend.DefaultKey(identity) }

func (p *Pib) CertsOf(keyName enc.Name) ([]Certificate, error) { return p.backend.CertsOf(keyName) }

func (p *Pib) GetCert(certName enc.Name) (*Certificate, error) { return p.backend.GetCert(certName) }

func (p *Pib) AddCert(keyName enc.Name, cert Certificate) error {
	return p.backend.AddCert(keyName, cert)
}

func (p *Pib) RemoveCert(certName enc.Name) error { return p.backend.RemoveCert(certName) }

func (p *Pib) SetDefaultCert(keyName, certName enc.Name) error {
	return p.backend.SetDefaultCert(keyName, certName)
}

func (p *Pib) DefaultCert(keyName enc.Name) (*Certificate, error) {
	return p.backend.DefaultCert(keyName)
}

// TpmLocator returns the Tpm locator this Pib was last paired with, or
// "" if none has been recorded yet.
func (p *Pib) TpmLocator() (string, error) { return p.backend.TpmLocator() }

// SetTpmLocator records the Tpm locator this Pib is now paired with.
func (p *Pib) SetTpmLocator(locator string) error { return p.backend.SetTpmLocator(locator) }

// Reset discards every identity, key and certificate.
func (p *Pib) Reset() error { return p.backend.Reset() }
