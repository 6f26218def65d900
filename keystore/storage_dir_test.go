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

import (
	"strings"
	"testing"
)

func tmpDirStorage(t *testing.T) *DirStorage {
	t.Helper()
	s, err := NewDirStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDirStoragePutSearchDelete(t *testing.T) {
	s := tmpDirStorage(t)
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

// TestDirStorageHideUnhide exercises spec.md §8 scenario 5.
func TestDirStorageHideUnhide(t *testing.T) {
	s := tmpDirStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}

	changed, err := s.Hide(*kf.Address)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected hide to report a change")
	}

	visible, err := s.ListAccounts(false)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range visible {
		if a.Address == *kf.Address {
			t.Fatal("hidden account should not appear when show_hidden=false")
		}
	}

	all, err := s.ListAccounts(true)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, a := range all {
		if a.Address == *kf.Address {
			found = true
		}
	}
	if !found {
		t.Fatal("hidden account should appear when show_hidden=true")
	}

	changed, err = s.Unhide(*kf.Address)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected unhide to report a change")
	}

	changed, err = s.Unhide(*kf.Address)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("unhide on an already-visible account should report no change")
	}
}

func TestDirStoragePutIsIdempotentByAddress(t *testing.T) {
	s := tmpDirStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}
	desc := "second write"
	kf.Description = &desc
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListAccounts(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file for repeated puts of the same address, got %d", len(entries))
	}
	if entries[0].Description != "second write" {
		t.Fatalf("expected overwrite to take effect, got %q", entries[0].Description)
	}
}

func TestDirStorageUpdate(t *testing.T) {
	s := tmpDirStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}
	name := "alice"
	if err := s.Update(*kf.Address, &name, nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.SearchByAddress(*kf.Address)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name == nil || *got.Name != "alice" {
		t.Fatalf("expected name to be updated, got %v", got.Name)
	}
}

func TestDirStorageListAccountsSkipsCorruptFiles(t *testing.T) {
	s := tmpDirStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}
	if err := atomicWriteFile(s.pathFor("garbage"), []byte("not json at all")); err != nil {
		t.Fatal(err)
	}

	accounts, err := s.ListAccounts(true)
	if err != nil {
		t.Fatalf("ListAccounts should not abort on a corrupt record: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected the corrupt file to be skipped, got %d accounts", len(accounts))
	}
}

func TestDirStorageFilenameFormat(t *testing.T) {
	s := tmpDirStorage(t)
	kf, err := New("foo", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(kf); err != nil {
		t.Fatal(err)
	}
	accounts, err := s.ListAccounts(true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(accounts[0].Filename, "UTC--") {
		t.Fatalf("expected UTC--prefixed filename, got %s", accounts[0].Filename)
	}
	if !strings.Contains(accounts[0].Filename, kf.Id.String()) {
		t.Fatalf("expected filename to contain the uuid, got %s", accounts[0].Filename)
	}
}
