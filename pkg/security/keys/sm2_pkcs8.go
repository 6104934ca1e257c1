package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// SM2's PKCS#8 wire form uses the same ASN.1 shape as plain EC keys
// but a curve OID (see sm2OID in sm2.go) that crypto/x509's parser
// does not recognize, so youmark/pkcs8 — which calls through to
// x509.ParsePKCS8PrivateKey/MarshalPKCS8PrivateKey internally — cannot
// encrypt or decrypt SM2 keys. This module carries its own minimal
// PBKDF2+AES-GCM envelope around the SEC1-like DER from
// marshalSm2PrivateKey/parseSm2PrivateKey for the encrypted case; the
// unencrypted case reuses that DER directly.
const sm2Pkcs8SaltLen = 16
const sm2Pkcs8Iterations = 100_000

func encryptSm2Pkcs8(der, password []byte) ([]byte, error) {
	salt := make([]byte, sm2Pkcs8SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := pbkdf2.Key(password, salt, sm2Pkcs8Iterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, nonce, der, nil)
	out := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

func decryptSm2Pkcs8(blob, password []byte) ([]byte, error) {
	if len(blob) < sm2Pkcs8SaltLen+12 {
		return nil, fmt.Errorf("keys: SM2 PKCS#8 blob too short")
	}
	salt := blob[:sm2Pkcs8SaltLen]
	key := pbkdf2.Key(password, salt, sm2Pkcs8Iterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceLen := gcm.NonceSize()
	nonce := blob[sm2Pkcs8SaltLen : sm2Pkcs8SaltLen+nonceLen]
	ciphertext := blob[sm2Pkcs8SaltLen+nonceLen:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// EncryptSecret wraps data in the same PBKDF2+AES-GCM envelope as
// encryptSm2Pkcs8, for callers that need password-based encryption at
// rest for a secret with no PKCS#8 form (e.g. an HMAC key in a TPM
// backend).
func EncryptSecret(data, password []byte) ([]byte, error) { return encryptSm2Pkcs8(data, password) }

// DecryptSecret inverts EncryptSecret.
func DecryptSecret(blob, password []byte) ([]byte, error) { return decryptSm2Pkcs8(blob, password) }
