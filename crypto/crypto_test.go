// Copyright 2014 The go-ethereum Authors
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

package crypto

import (
	"encoding/hex"
	"testing"
)

func TestKeccak256Deterministic(t *testing.T) {
	in := []byte("the quick brown fox")
	h1 := Keccak256(in)
	h2 := Keccak256(in)
	if len(h1) != DigestLength {
		t.Fatalf("digest length = %d, want %d", len(h1), DigestLength)
	}
	if hex.EncodeToString(h1) != hex.EncodeToString(h2) {
		t.Fatal("Keccak256 is not deterministic")
	}
	if hex.EncodeToString(Keccak256([]byte("a"), []byte("b"))) != hex.EncodeToString(Keccak256([]byte("ab"))) {
		t.Fatal("variadic Keccak256 should hash the concatenation of its arguments")
	}
}

func TestGenerateKeyAndAddress(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	if priv.D.Sign() == 0 {
		t.Fatal("generated a zero private key")
	}
	addr := PubkeyToAddress(priv.PublicKey)
	if addr.IsZero() {
		t.Fatal("derived address is zero")
	}
}

func TestToECDSARoundTrip(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	raw := FromECDSA(priv)
	if len(raw) != 32 {
		t.Fatalf("expected 32-byte scalar, got %d", len(raw))
	}
	priv2, err := ToECDSA(raw)
	if err != nil {
		t.Fatal(err)
	}
	if PubkeyToAddress(priv.PublicKey) != PubkeyToAddress(priv2.PublicKey) {
		t.Fatal("round-tripped key derives a different address")
	}
}

func TestRandomBytesLength(t *testing.T) {
	b, err := RandomBytes(32)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(b))
	}
}
