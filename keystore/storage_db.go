// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package keystore

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ethkeystore/keystore-core/common"
)

// dbSeparator is the fixed literal joining filename and JSON in one KV-DB
// value, per spec.md §4.4/§6: value = filename ‖ "<|>" ‖ canonical_json.
const dbSeparator = "<|>"

// DBStorage is the embedded-database Storage implementation. It is
// grounded on the teacher's cmd/clef/dbutil.KVStore (a single SQLite table
// addressed by Put/Get/Del/All), repurposed here to the address-keyed
// filename<|>json record layout spec.md calls for.
type DBStorage struct {
	writeDB *sql.DB // single connection, serializes all writes
	readDB  *sql.DB // pooled, read-only

	mu  sync.Mutex // funnels writers through one critical section
	log *slog.Logger
}

// NewDBStorage opens (creating if necessary) a SQLite-backed KV-DB storage
// at path.
func NewDBStorage(path string) (*DBStorage, error) {
	return NewDBStorageWithAuditLog(path, "")
}

// NewDBStorageWithAuditLog is NewDBStorage, but put/delete/hide/unhide
// events are additionally recorded to a rotating log file at auditLogPath
// (see newAuditLogger). Pass "" to fall back to slog.Default().
func NewDBStorageWithAuditLog(path, auditLogPath string) (*DBStorage, error) {
	writeDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, newErr(KindIoError, "open keystore database", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite3", path)
	if err != nil {
		writeDB.Close()
		return nil, newErr(KindIoError, "open keystore database", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS keyfiles (
		address BLOB PRIMARY KEY,
		value   TEXT NOT NULL
	)`
	if _, err := writeDB.Exec(schema); err != nil {
		writeDB.Close()
		readDB.Close()
		return nil, newErr(KindIoError, "create keyfiles table", err)
	}

	return &DBStorage{
		writeDB: writeDB,
		readDB:  readDB,
		log:     newAuditLogger(auditLogPath, "component", "dbstorage", "path", path),
	}, nil
}

// Close releases the underlying SQLite connections.
func (s *DBStorage) Close() error {
	err1 := s.writeDB.Close()
	err2 := s.readDB.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func splitValue(value string) (filename, jsonText string, err error) {
	parts := strings.SplitN(value, dbSeparator, 2)
	if len(parts) != 2 {
		return "", "", newErr(KindInvalidJSON, "malformed kv-db record: missing separator", nil)
	}
	// Rejoin isn't needed with SplitN(..., 2): everything after the first
	// separator occurrence, including any embedded separator text inside
	// the JSON payload, stays in parts[1] intact (spec.md §4.4/§9).
	return parts[0], parts[1], nil
}

func joinValue(filename string, jsonBytes []byte) (string, error) {
	if strings.Contains(filename, dbSeparator) {
		return "", newErr(KindInvalidLength, "filename must not contain the kv-db separator", nil)
	}
	return filename + dbSeparator + string(jsonBytes), nil
}

// Put implements Storage.
func (s *DBStorage) Put(kf *KeyFile) error {
	data, err := kf.Encode()
	if err != nil {
		return err
	}
	if kf.Address == nil {
		return newErr(KindInvalidLength, "keyfile must have an address to be stored in the kv-db", nil)
	}
	filename := fmt.Sprintf("UTC--%s", kf.Id.String())
	value, err := joinValue(filename, data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.findUUIDOwnerLocked(kf.Id.String()); ok && owner != *kf.Address {
		return ErrDuplicate
	}

	_, err = s.writeDB.Exec(
		`INSERT INTO keyfiles(address, value) VALUES (?, ?)
		 ON CONFLICT(address) DO UPDATE SET value = excluded.value`,
		kf.Address.Bytes(), value,
	)
	if err != nil {
		return newErr(KindIoError, "put keyfile", err)
	}
	s.log.Info("put", "address", kf.Address.Hex())
	return nil
}

// findUUIDOwnerLocked reports the address already using uuidStr, if any.
// Callers must hold s.mu; it runs on the write connection so it observes
// the writer's own uncommitted-but-visible state consistently.
func (s *DBStorage) findUUIDOwnerLocked(uuidStr string) (common.Address, bool) {
	rows, err := s.writeDB.Query(`SELECT address, value FROM keyfiles`)
	if err != nil {
		return common.Address{}, false
	}
	defer rows.Close()
	for rows.Next() {
		var addrBytes []byte
		var value string
		if err := rows.Scan(&addrBytes, &value); err != nil {
			continue
		}
		_, jsonText, err := splitValue(value)
		if err != nil {
			continue
		}
		kf, err := DecodeKeyFile([]byte(jsonText))
		if err != nil {
			continue
		}
		if kf.Id.String() == uuidStr {
			return common.BytesToAddress(addrBytes), true
		}
	}
	return common.Address{}, false
}

// Delete implements Storage.
func (s *DBStorage) Delete(addr common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.writeDB.Exec(`DELETE FROM keyfiles WHERE address = ?`, addr.Bytes())
	if err != nil {
		return newErr(KindIoError, "delete keyfile", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return newErr(KindIoError, "delete keyfile", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.log.Info("delete", "address", addr.Hex())
	return nil
}

// SearchByAddress implements Storage.
func (s *DBStorage) SearchByAddress(addr common.Address) (*KeyFile, error) {
	var value string
	row := s.readDB.QueryRow(`SELECT value FROM keyfiles WHERE address = ?`, addr.Bytes())
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, newErr(KindIoError, "search keyfile", err)
	}
	_, jsonText, err := splitValue(value)
	if err != nil {
		return nil, err
	}
	return DecodeKeyFile([]byte(jsonText))
}

// Hide implements Storage.
func (s *DBStorage) Hide(addr common.Address) (bool, error) {
	return s.setVisible(addr, false)
}

// Unhide implements Storage.
func (s *DBStorage) Unhide(addr common.Address) (bool, error) {
	return s.setVisible(addr, true)
}

func (s *DBStorage) setVisible(addr common.Address, visible bool) (bool, error) {
	kf, err := s.SearchByAddress(addr)
	if err != nil {
		return false, err
	}
	wasVisible := kf.Visible == nil || *kf.Visible
	if wasVisible == visible {
		return false, nil
	}
	kf.Visible = &visible
	if err := s.Put(kf); err != nil {
		return false, err
	}
	s.log.Info("visibility change", "address", addr.Hex(), "visible", visible)
	return true, nil
}

// ListAccounts implements Storage. It snapshots the address set with one
// query, then reads each record individually, per spec.md §9's guidance
// against holding a lock for the full duration of the iteration.
func (s *DBStorage) ListAccounts(showHidden bool) ([]AccountInfo, error) {
	rows, err := s.readDB.Query(`SELECT address FROM keyfiles`)
	if err != nil {
		return nil, newErr(KindIoError, "list keyfiles", err)
	}
	var addrs []common.Address
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			rows.Close()
			return nil, newErr(KindIoError, "list keyfiles", err)
		}
		addrs = append(addrs, common.BytesToAddress(b))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, newErr(KindIoError, "list keyfiles", err)
	}

	var out []AccountInfo
	for _, addr := range addrs {
		var value string
		row := s.readDB.QueryRow(`SELECT value FROM keyfiles WHERE address = ?`, addr.Bytes())
		if err := row.Scan(&value); err != nil {
			continue // raced with a concurrent delete; skip silently
		}
		filename, jsonText, err := splitValue(value)
		if err != nil {
			s.log.Warn("malformed kv-db record", "address", addr, "err", err)
			continue
		}
		kf, err := DecodeKeyFile([]byte(jsonText))
		if err != nil {
			s.log.Warn("failed to decode keyfile", "address", addr, "err", err)
			continue
		}
		visible := kf.Visible == nil || *kf.Visible
		if !visible && !showHidden {
			continue
		}
		out = append(out, accountInfoFrom(kf, filename))
	}
	return out, nil
}

// Update implements Storage.
func (s *DBStorage) Update(addr common.Address, name, description *string) error {
	kf, err := s.SearchByAddress(addr)
	if err != nil {
		return err
	}
	if name != nil {
		kf.Name = name
	}
	if description != nil {
		kf.Description = description
	}
	return s.Put(kf)
}

var _ Storage = (*DBStorage)(nil)
