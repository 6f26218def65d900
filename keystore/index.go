// Copyright 2017 The go-ethereum Authors
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

import "github.com/ethkeystore/keystore-core/common"

// TxSigner is the external collaborator that turns a decrypted secret and
// a transaction payload into a signed transaction. It is implemented
// outside this module (spec.md §4.6, "the signer itself is external") —
// RLP encoding and transport are explicitly out of this core's scope
// (spec.md §1).
type TxSigner interface {
	Sign(secret, txPayload []byte) ([]byte, error)
}

// Index is the small read-only-shaped façade the JSON-RPC collaborator
// consumes (spec.md §4.6). It composes a Storage with the crypto engine so
// the RPC layer never touches a KeyFile or a plaintext secret directly.
type Index struct {
	storage Storage
	signer  TxSigner
}

// NewIndex builds an account index surface over storage. signer may be
// nil if the caller never invokes Sign.
func NewIndex(storage Storage, signer TxSigner) *Index {
	return &Index{storage: storage, signer: signer}
}

// ListVisible returns every non-hidden account known to the storage.
func (ix *Index) ListVisible() ([]AccountInfo, error) {
	return ix.storage.ListAccounts(false)
}

// Lookup returns the AccountInfo for addr, or ErrNotFound.
func (ix *Index) Lookup(addr common.Address) (AccountInfo, error) {
	kf, err := ix.storage.SearchByAddress(addr)
	if err != nil {
		return AccountInfo{}, err
	}
	return accountInfoFrom(kf, ""), nil
}

// Create generates a fresh account at the given security level and
// persists it, returning its AccountInfo.
func (ix *Index) Create(password string, level SecurityLevel) (AccountInfo, error) {
	kf, err := New(password, level)
	if err != nil {
		return AccountInfo{}, err
	}
	if err := ix.storage.Put(kf); err != nil {
		return AccountInfo{}, err
	}
	return accountInfoFrom(kf, ""), nil
}

// ImportRaw normalizes and persists a foreign keystore file.
func (ix *Index) ImportRaw(jsonBytes []byte, name, description *string) (AccountInfo, error) {
	kf, err := ImportRawNamed(jsonBytes, name, description)
	if err != nil {
		return AccountInfo{}, err
	}
	if kf.Address == nil {
		// The file declares no address, and none is derived here because
		// deriving it needs the password. The import is rejected rather
		// than persisting an empty/zero address. A declared address is
		// not checked against the secret at import time.
		return AccountInfo{}, newErr(KindInvalidLength, "imported keyfile has no address and none could be derived without a password", nil)
	}
	if err := ix.storage.Put(kf); err != nil {
		return AccountInfo{}, err
	}
	return accountInfoFrom(kf, ""), nil
}

// Sign decrypts the secret at addr under password and hands it, along with
// txPayload, to the external signer. The plaintext secret is released
// before Sign returns, regardless of the signer's outcome.
func (ix *Index) Sign(addr common.Address, password string, txPayload []byte) ([]byte, error) {
	kf, err := ix.storage.SearchByAddress(addr)
	if err != nil {
		return nil, err
	}
	pt, err := decrypt(password, kf)
	if err != nil {
		return nil, err
	}
	defer pt.Release()

	if ix.signer == nil {
		return nil, newErr(KindIoError, "no transaction signer configured", nil)
	}
	return ix.signer.Sign(pt.Bytes(), txPayload)
}
