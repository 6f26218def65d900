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
	"bytes"
	"testing"

	"github.com/ethkeystore/keystore-core/common"
)

type echoSigner struct {
	lastSecret []byte
}

func (s *echoSigner) Sign(secret, txPayload []byte) ([]byte, error) {
	s.lastSecret = append([]byte(nil), secret...)
	return append(append([]byte(nil), secret...), txPayload...), nil
}

func TestIndexCreateListLookup(t *testing.T) {
	ix := NewIndex(tmpDirStorage(t), nil)

	info, err := ix.Create("pw", Normal)
	if err != nil {
		t.Fatal(err)
	}

	listed, err := ix.ListVisible()
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Address != info.Address {
		t.Fatalf("expected the created account to be listed, got %+v", listed)
	}

	got, err := ix.Lookup(info.Address)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address != info.Address {
		t.Fatalf("lookup returned wrong address: %v", got.Address)
	}
}

func TestIndexLookupMissing(t *testing.T) {
	ix := NewIndex(tmpDirStorage(t), nil)
	if _, err := ix.Lookup(common.Address{}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIndexImportRawRejectsAddresslessFile(t *testing.T) {
	ix := NewIndex(tmpDirStorage(t), nil)
	bad := `{
		"version": 3,
		"id": "37e0d14f-7269-7ca0-4419-d7b13abfeea9",
		"crypto": {
			"cipher": "aes-128-ctr",
			"cipherparams": {"iv": "` + fixtureIv32 + `"},
			"ciphertext": "9c9e3ebb",
			"kdf": "scrypt",
			"kdfparams": {"dklen": 32, "salt": "` + fixtureSalt64 + `", "n": 1024, "r": 8, "p": 1},
			"mac": "` + fixtureMac64 + `"
		}
	}`
	if _, err := ix.ImportRaw([]byte(bad), nil, nil); err == nil {
		t.Fatal("expected import of an addressless keyfile to be rejected")
	}
}

func TestIndexImportRawPersistsAndLooksUp(t *testing.T) {
	ix := NewIndex(tmpDirStorage(t), nil)
	name := "alice"
	info, err := ix.ImportRaw([]byte(gethStyleFixture), &name, nil)
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != name {
		t.Fatalf("expected imported name %q, got %q", name, info.Name)
	}
	got, err := ix.Lookup(info.Address)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != name {
		t.Fatalf("expected imported account to be persisted with name, got %q", got.Name)
	}
}

func TestIndexSignDelegatesToSigner(t *testing.T) {
	storage := tmpDirStorage(t)
	signer := &echoSigner{}
	ix := NewIndex(storage, signer)

	info, err := ix.Create("pw", Normal)
	if err != nil {
		t.Fatal(err)
	}

	payload := []byte("transaction bytes")
	sig, err := ix.Sign(info.Address, "pw", payload)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(sig, payload) {
		t.Fatalf("expected signer output to carry the payload through, got %x", sig)
	}
	if len(signer.lastSecret) == 0 {
		t.Fatal("expected signer to receive a non-empty secret")
	}

	if _, err := ix.Sign(info.Address, "wrong", payload); err == nil {
		t.Fatal("expected sign with the wrong password to fail")
	}
}

func TestIndexSignWithoutSignerConfigured(t *testing.T) {
	storage := tmpDirStorage(t)
	ix := NewIndex(storage, nil)

	info, err := ix.Create("pw", Normal)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ix.Sign(info.Address, "pw", []byte("tx")); err == nil {
		t.Fatal("expected Sign to fail when no signer is configured")
	}
}
