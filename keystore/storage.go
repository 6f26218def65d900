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

// AccountInfo is the listing projection over a KeyFile (spec.md §3):
// enough to render an account picker without ever touching ciphertext.
type AccountInfo struct {
	Address     common.Address
	Name        string
	Description string
	Visible     bool
	Filename    string
}

// Storage is the single capability both the directory and the embedded
// key-value-DB backends implement (spec.md §4.4). Dispatch between the two
// is by construction — callers hold a Storage value, never a concrete type.
type Storage interface {
	// Put persists kf, overwriting any existing record at the same
	// address (idempotent by address, per spec.md §4.4).
	Put(kf *KeyFile) error

	// Delete removes the record at addr. Returns ErrNotFound if absent.
	Delete(addr common.Address) error

	// SearchByAddress returns the record stored at addr, case-insensitive
	// on the hex form per I6. Returns ErrNotFound if absent.
	SearchByAddress(addr common.Address) (*KeyFile, error)

	// Hide marks the record at addr invisible. Returns whether the
	// visibility actually changed (spec.md §9, Open Question (b)).
	Hide(addr common.Address) (bool, error)

	// Unhide marks the record at addr visible. Returns whether the
	// visibility actually changed.
	Unhide(addr common.Address) (bool, error)

	// ListAccounts returns AccountInfo for every record, skipping hidden
	// ones unless showHidden is set. Records that fail to decode are
	// logged and skipped rather than aborting the listing.
	ListAccounts(showHidden bool) ([]AccountInfo, error)

	// Update overwrites the Name/Description fields that are non-nil,
	// leaving the others untouched. Returns ErrNotFound if addr is absent.
	Update(addr common.Address, name, description *string) error
}
