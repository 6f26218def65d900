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
	"path/filepath"
	"testing"
)

func tmpDBStorage(t *testing.T) *DBStorage {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keystore.db")
	s, err := NewDBStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDBStoragePutSearchDelete(t *testing.T) {
	s := tmpDBStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}
	got, err := s.SearchByAddress(*kf.Address)
	if err != nil {
		t.Fatal(err)
	}
	if got.Id != kf.Id {
		t.Fatal("uuid mismatch after put+search")
	}
	if err := s.Delete(*kf.Address); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SearchByAddress(*kf.Address); err == nil {
		t.Fatal("expected NotFound after delete")
	}
}

func TestDBStorageHideUnhide(t *testing.T) {
	s := tmpDBStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}
	if changed, err := s.Hide(*kf.Address); err != nil || !changed {
		t.Fatalf("hide: changed=%v err=%v", changed, err)
	}
	visible, err := s.ListAccounts(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Fatal("hidden account should not appear when show_hidden=false")
	}
	all, err := s.ListAccounts(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatal("hidden account should appear when show_hidden=true")
	}
}

// TestDBStorageSeparatorInName exercises spec.md §8 scenario 6: a name
// containing the literal "<|>" separator must round-trip unchanged.
func TestDBStorageSeparatorInName(t *testing.T) {
	s := tmpDBStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	name := "weird<|>name"
	kf.Name = &name
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}

	accounts, err := s.ListAccounts(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	if accounts[0].Name != name {
		t.Fatalf("expected name %q to survive the kv-db separator, got %q", name, accounts[0].Name)
	}

	got, err := s.SearchByAddress(*kf.Address)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name == nil || *got.Name != name {
		t.Fatalf("expected name to round-trip through search, got %v", got.Name)
	}
}

func TestDBStorageDuplicateUUIDDifferentAddress(t *testing.T) {
	s := tmpDBStorage(t)
	kf1, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf1); err != nil {
		t.Fatal(err)
	}

	kf2, err := New("bar", Normal)
	if err != nil {
		t.Fatal(err)
	}
	kf2.Id = kf1.Id // force a uuid collision against a different address

	if err := s.Put(kf2); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestDBStorageUpdate(t *testing.T) {
	s := tmpDBStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}
	desc := "updated description"
	if err := s.Update(*kf.Address, nil, &desc); err != nil {
		t.Fatal(err)
	}
	got, err := s.SearchByAddress(*kf.Address)
	if err != nil {
		t.Fatal(err)
	}
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("expected description to be updated, got %v", got.Description)
	}
}
