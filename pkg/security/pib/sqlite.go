package pib

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/named-data/ndn-keychain/pkg/enc"
)

func init() {
	RegisterBackend("pib-sqlite3", func(location string) (Backend, error) {
		return newSqliteBackend(location)
	})
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS identities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identity BLOB NOT NULL UNIQUE,
	is_default INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS keys (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identity_id INTEGER NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
	key_name BLOB NOT NULL UNIQUE,
	key_bits BLOB NOT NULL,
	is_default INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS certificates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	key_id INTEGER NOT NULL REFERENCES keys(id) ON DELETE CASCADE,
	certificate_name BLOB NOT NULL UNIQUE,
	certificate_data BLOB NOT NULL,
	is_default INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS tpm_info (
	id INTEGER PRIMARY KEY CHECK (id = 0),
	tpm_locator TEXT NOT NULL DEFAULT ''
);
`

// sqliteBackend is a PIB backend over mattn/go-sqlite3, generalizing
// the teacher's read-only SqlitePib (identities/keys/certificates
// tables, keyed by wire-encoded Name) with the create/delete/
// set-default writes the KeyChain needs.
type sqliteBackend struct {
	db *sql.DB
}

func newSqliteBackend(path string) (*sqliteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("pib-sqlite3: opening %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("pib-sqlite3: creating schema: %w", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Identities() ([]Identity, error) {
	rows, err := b.db.Query("SELECT identity, is_default FROM identities")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Identity
	for rows.Next() {
		var nameWire []byte
		var isDefault bool
		if err := rows.Scan(&nameWire, &isDefault); err != nil {
			return nil, err
		}
		name, err := enc.NameFromBytes(nameWire)
		if err != nil {
			return nil, err
		}
		out = append(out, Identity{Name: name, IsDefault: isDefault})
	}
	return out, rows.Err()
}

func (b *sqliteBackend) GetIdentity(name enc.Name) (*Identity, error) {
	row := b.db.QueryRow("SELECT is_default FROM identities WHERE identity=?", name.Bytes())
	var isDefault bool
	if err := row.Scan(&isDefault); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Identity{Name: name, IsDefault: isDefault}, nil
}

func (b *sqliteBackend) AddIdentity(name enc.Name) error {
	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return err
	}
	isDefault := count == 0
	_, err := b.db.Exec(
		"INSERT OR IGNORE INTO identities (identity, is_default) VALUES (?, ?)",
		name.Bytes(), isDefault,
	)
	return err
}

func (b *sqliteBackend) RemoveIdentity(name enc.Name) error {
	_, err := b.db.Exec("DELETE FROM identities WHERE identity=?", name.Bytes())
	return err
}

func (b *sqliteBackend) SetDefaultIdentity(name enc.Name) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec("UPDATE identities SET is_default=0"); err != nil {
		return err
	}
	res, err := tx.Exec("UPDATE identities SET is_default=1 WHERE identity=?", name.Bytes())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (b *sqliteBackend) DefaultIdentity() (*Identity, error) {
	row := b.db.QueryRow("SELECT identity FROM identities WHERE is_default=1")
	var nameWire []byte
	if err := row.Scan(&nameWire); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	name, err := enc.NameFromBytes(nameWire)
	if err != nil {
		return nil, err
	}
	return &Identity{Name: name, IsDefault: true}, nil
}

func (b *sqliteBackend) identityRowID(name enc.Name) (int64, error) {
	row := b.db.QueryRow("SELECT id FROM identities WHERE identity=?", name.Bytes())
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (b *sqliteBackend) keyRowID(keyName enc.Name) (int64, error) {
	row := b.db.QueryRow("SELECT id FROM keys WHERE key_name=?", keyName.Bytes())
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (b *sqliteBackend) KeysOf(identity enc.Name) ([]Key, error) {
	rows, err := b.db.Query(
		`SELECT key_name, key_bits, is_default FROM keys
		 WHERE identity_id=(SELECT id FROM identities WHERE identity=?)`,
		identity.Bytes(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Key
	for rows.Next() {
		var nameWire, bits []byte
		var isDefault bool
		if err := rows.Scan(&nameWire, &bits, &isDefault); err != nil {
			return nil, err
		}
		name, err := enc.NameFromBytes(nameWire)
		if err != nil {
			return nil, err
		}
		out = append(out, Key{Name: name, KeyBits: bits, IsDefault: isDefault})
	}
	return out, rows.Err()
}

func (b *sqliteBackend) GetKey(keyName enc.Name) (*Key, error) {
	row := b.db.QueryRow("SELECT key_bits, is_default FROM keys WHERE key_name=?", keyName.Bytes())
	var bits []byte
	var isDefault bool
	if err := row.Scan(&bits, &isDefault); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Key{Name: keyName, KeyBits: bits, IsDefault: isDefault}, nil
}

func (b *sqliteBackend) AddKey(identity enc.Name, key Key) error {
	identID, err := b.identityRowID(identity)
	if err != nil {
		return err
	}
	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM keys WHERE identity_id=?", identID).Scan(&count); err != nil {
		return err
	}
	_, err = b.db.Exec(
		"INSERT OR IGNORE INTO keys (identity_id, key_name, key_bits, is_default) VALUES (?, ?, ?, ?)",
		identID, key.Name.Bytes(), key.KeyBits, count == 0,
	)
	return err
}

func (b *sqliteBackend) RemoveKey(keyName enc.Name) error {
	_, err := b.db.Exec("DELETE FROM keys WHERE key_name=?", keyName.Bytes())
	return err
}

func (b *sqliteBackend) SetDefaultKey(identity, keyName enc.Name) error {
	identID, err := b.identityRowID(identity)
	if err != nil {
		return err
	}
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec("UPDATE keys SET is_default=0 WHERE identity_id=?", identID); err != nil {
		return err
	}
	res, err := tx.Exec("UPDATE keys SET is_default=1 WHERE key_name=? AND identity_id=?", keyName.Bytes(), identID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (b *sqliteBackend) DefaultKey(identity enc.Name) (*Key, error) {
	identID, err := b.identityRowID(identity)
	if err != nil {
		return nil, err
	}
	row := b.db.QueryRow("SELECT key_name, key_bits FROM keys WHERE identity_id=? AND is_default=1", identID)
	var nameWire, bits []byte
	if err := row.Scan(&nameWire, &bits); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	name, err := enc.NameFromBytes(nameWire)
	if err != nil {
		return nil, err
	}
	return &Key{Name: name, KeyBits: bits, IsDefault: true}, nil
}

func (b *sqliteBackend) CertsOf(keyName enc.Name) ([]Certificate, error) {
	rows, err := b.db.Query(
		`SELECT certificate_name, certificate_data, is_default FROM certificates
		 WHERE key_id=(SELECT id FROM keys WHERE key_name=?)`,
		keyName.Bytes(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Certificate
	for rows.Next() {
		var nameWire, data []byte
		var isDefault bool
		if err := rows.Scan(&nameWire, &data, &isDefault); err != nil {
			return nil, err
		}
		name, err := enc.NameFromBytes(nameWire)
		if err != nil {
			return nil, err
		}
		locator, _ := ParseCertificate(data)
		out = append(out, Certificate{Name: name, Data: data, KeyLocator: locator, IsDefault: isDefault})
	}
	return out, rows.Err()
}

func (b *sqliteBackend) GetCert(certName enc.Name) (*Certificate, error) {
	row := b.db.QueryRow(
		"SELECT certificate_data, is_default FROM certificates WHERE certificate_name=?",
		certName.Bytes(),
	)
	var data []byte
	var isDefault bool
	if err := row.Scan(&data, &isDefault); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	locator, _ := ParseCertificate(data)
	return &Certificate{Name: certName, Data: data, KeyLocator: locator, IsDefault: isDefault}, nil
}

func (b *sqliteBackend) AddCert(keyName enc.Name, cert Certificate) error {
	keyID, err := b.keyRowID(keyName)
	if err != nil {
		return err
	}
	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM certificates WHERE key_id=?", keyID).Scan(&count); err != nil {
		return err
	}
	_, err = b.db.Exec(
		"INSERT OR IGNORE INTO certificates (key_id, certificate_name, certificate_data, is_default) VALUES (?, ?, ?, ?)",
		keyID, cert.Name.Bytes(), cert.Data, count == 0,
	)
	return err
}

func (b *sqliteBackend) RemoveCert(certName enc.Name) error {
	_, err := b.db.Exec("DELETE FROM certificates WHERE certificate_name=?", certName.Bytes())
	return err
}

func (b *sqliteBackend) SetDefaultCert(keyName, certName enc.Name) error {
	keyID, err := b.keyRowID(keyName)
	if err != nil {
		return err
	}
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec("UPDATE certificates SET is_default=0 WHERE key_id=?", keyID); err != nil {
		return err
	}
	res, err := tx.Exec(
		"UPDATE certificates SET is_default=1 WHERE certificate_name=? AND key_id=?",
		certName.Bytes(), keyID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (b *sqliteBackend) DefaultCert(keyName enc.Name) (*Certificate, error) {
	keyID, err := b.keyRowID(keyName)
	if err != nil {
		return nil, err
	}
	row := b.db.QueryRow(
		"SELECT certificate_name, certificate_data FROM certificates WHERE key_id=? AND is_default=1",
		keyID,
	)
	var nameWire, data []byte
	if err := row.Scan(&nameWire, &data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	name, err := enc.NameFromBytes(nameWire)
	if err != nil {
		return nil, err
	}
	locator, _ := ParseCertificate(data)
	return &Certificate{Name: name, Data: data, KeyLocator: locator, IsDefault: true}, nil
}

func (b *sqliteBackend) TpmLocator() (string, error) {
	row := b.db.QueryRow("SELECT tpm_locator FROM tpm_info WHERE id=0")
	var locator string
	if err := row.Scan(&locator); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return locator, nil
}

func (b *sqliteBackend) SetTpmLocator(locator string) error {
	_, err := b.db.Exec(
		"INSERT INTO tpm_info (id, tpm_locator) VALUES (0, ?) ON CONFLICT(id) DO UPDATE SET tpm_locator=excluded.tpm_locator",
		locator,
	)
	return err
}

func (b *sqliteBackend) Reset() error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range []string{
		"DELETE FROM certificates",
		"DELETE FROM keys",
		"DELETE FROM identities",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
