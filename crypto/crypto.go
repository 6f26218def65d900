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

// Package crypto provides the pure byte-in/byte-out primitives the keystore
// core is built from: Keccak-256 hashing and secp256k1 key generation /
// address derivation. It performs no I/O and holds no state.
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/sha3"

	"github.com/ethkeystore/keystore-core/common"
)

// DigestLength is the length in bytes of a Keccak-256 digest.
const DigestLength = 32

// Keccak256 calculates and returns the Keccak-256 hash of the concatenated
// input byte slices. It uses the original Keccak padding (0x01 domain
// separator), not the later NIST SHA3 padding (0x06) — this is the hash
// Ethereum uses throughout, and the two are not interchangeable.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak-256 hash as a fixed-size
// array, avoiding an extra allocation at call sites that need one.
func Keccak256Hash(data ...[]byte) (h [DigestLength]byte) {
	copy(h[:], Keccak256(data...))
	return h
}

// S256 returns the secp256k1 curve, exposed for callers that need the
// curve parameters, e.g. to validate a scalar against the curve order.
func S256() elliptic.Curve {
	return btcec.S256()
}

// GenerateKey creates a new secp256k1 private key using the system CSPRNG.
// It is a thin wrapper that exists so callers never reach for crypto/rand
// directly and forget to validate against the curve order; btcec's
// NewPrivateKey already rejects zero and out-of-range scalars internally and
// retries, satisfying spec.md §4.3's "reject zero and values >= n" rule.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("crypto: rng failure: %w", err)
	}
	return key.ToECDSA(), nil
}

// ToECDSA parses a 32-byte big-endian scalar as a secp256k1 private key.
func ToECDSA(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) != 32 {
		return nil, fmt.Errorf("crypto: invalid private key length %d", len(d))
	}
	priv, pub := btcec.PrivKeyFromBytes(d)
	if priv == nil {
		return nil, fmt.Errorf("crypto: invalid private key")
	}
	_ = pub
	return priv.ToECDSA(), nil
}

// FromECDSA exports a private key into a 32-byte big-endian scalar.
func FromECDSA(priv *ecdsa.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return padTo32(priv.D.Bytes())
}

// PubkeyToAddress derives the 20-byte Ethereum address of a public key:
// the last 20 bytes of Keccak-256 over the 64-byte uncompressed point
// (X‖Y, without the 0x04 prefix byte).
func PubkeyToAddress(pub ecdsa.PublicKey) common.Address {
	buf := elliptic.Marshal(btcec.S256(), pub.X, pub.Y)
	hash := Keccak256(buf[1:]) // drop the leading 0x04 prefix
	return common.BytesToAddress(hash[12:])
}

func padTo32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// randomBytes reads n bytes from the system CSPRNG. Used for kdf salts and
// cipher IVs so every caller draws entropy through one audited choke point.
func randomBytes(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("crypto: rng failure: %w", err)
	}
	return b, nil
}

// RandomBytes draws n bytes of cryptographically secure randomness.
func RandomBytes(n int) ([]byte, error) {
	return randomBytes(rand.Reader, n)
}
