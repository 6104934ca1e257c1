package tpm

import (
	"encoding/base64"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/named-data/ndn-keychain/pkg/enc"
	"github.com/named-data/ndn-keychain/pkg/security/keys"
)

func init() {
	RegisterBackend("tpm-bbolt", func(location string) (Backend, error) {
		return newBboltBackend(location)
	})
}

var bboltKeysBucket = []byte("keys")

// bboltBackend stores key material in a single bbolt bucket, keyed by
// the key name's wire encoding, holding the same type-tagged base64
// blob format as osxBackend (a type-tag byte followed by the PKCS#1
// or raw HMAC bytes, unencrypted). Unlike fileBackend's one-file-per-key
// layout, every key lives in one file, which bbolt's single-writer
// transactions make safe for concurrent callers within a process.
type bboltBackend struct {
	db *bolt.DB
}

func newBboltBackend(path string) (*bboltBackend, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("tpm-bbolt: opening %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bboltKeysBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("tpm-bbolt: creating bucket: %w", err)
	}
	return &bboltBackend{db: db}, nil
}

func (b *bboltBackend) HasKey(keyName enc.Name) bool {
	var found bool
	b.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bboltKeysBucket).Get(keyName.Bytes()) != nil
		return nil
	})
	return found
}

func (b *bboltBackend) GetKey(keyName enc.Name) (*keys.PrivateKey, error) {
	var blob []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bboltKeysBucket).Get(keyName.Bytes())
		if v == nil {
			return fmt.Errorf("tpm-bbolt: no key %s", keyName)
		}
		blob = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	block, err := base64.StdEncoding.DecodeString(string(blob))
	if err != nil {
		return nil, fmt.Errorf("tpm-bbolt: decoding key %s: %w", keyName, err)
	}
	if len(block) < 1 {
		return nil, fmt.Errorf("tpm-bbolt: empty key record for %s", keyName)
	}
	kt := keys.KeyType(block[0])
	payload := block[1:]

	k := keys.NewPrivateKey()
	if kt == keys.KeyTypeHmac {
		if err := k.LoadRaw(payload); err != nil {
			return nil, err
		}
		return k, nil
	}
	if err := k.LoadPkcs1(payload, kt); err != nil {
		return nil, fmt.Errorf("tpm-bbolt: parsing key %s: %w", keyName, err)
	}
	return k, nil
}

func (b *bboltBackend) CreateKey(keyName enc.Name, params keys.KeyParams) (*keys.PrivateKey, error) {
	k, err := keys.GeneratePrivateKey(params)
	if err != nil {
		return nil, err
	}
	if err := b.ImportKey(keyName, k); err != nil {
		return nil, err
	}
	return k, nil
}

func (b *bboltBackend) ImportKey(keyName enc.Name, key *keys.PrivateKey) error {
	if b.HasKey(keyName) {
		return fmt.Errorf("tpm-bbolt: key %s already exists", keyName)
	}
	var payload []byte
	var err error
	if key.KeyType() == keys.KeyTypeHmac {
		payload, err = key.SaveRaw()
	} else {
		payload, err = key.SavePkcs1()
	}
	if err != nil {
		return fmt.Errorf("tpm-bbolt: encoding key %s: %w", keyName, err)
	}
	block := append([]byte{byte(key.KeyType())}, payload...)
	encoded := base64.StdEncoding.EncodeToString(block)
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bboltKeysBucket).Put(keyName.Bytes(), []byte(encoded))
	})
}

func (b *bboltBackend) DeleteKey(keyName enc.Name) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bboltKeysBucket).Delete(keyName.Bytes())
	})
}

func (b *bboltBackend) IsTerminalMode() bool { return false }

func (b *bboltBackend) Close() error { return b.db.Close() }
