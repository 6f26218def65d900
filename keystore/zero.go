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

// zero overwrites b with zero bytes in place. It is called on every exit
// path of the derive/encrypt/decrypt operations so a derived key or
// plaintext secret never outlives the call that produced it (spec.md §3,
// "Lifecycle").
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// secret is a plaintext wrapper that zeroes itself when Release is called.
// It replaces passing a raw []byte up the call stack, mirroring spec.md
// §9's "small owning wrapper that zeroes on drop" design note. Length is
// not fixed at 32: decrypt must CTR-decrypt a ciphertext of any length
// byte-for-byte (spec.md §4.2), even though the plaintext secrets this
// keystore generates are always 32 bytes.
type secret struct {
	b []byte
}

// Bytes returns the wrapped plaintext. The caller must not retain the
// returned slice past the wrapper's Release call.
func (s *secret) Bytes() []byte { return s.b }

// Release zeroes the wrapped plaintext. Safe to call multiple times.
func (s *secret) Release() {
	zero(s.b)
}

func newSecret(b []byte) *secret {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &secret{b: cp}
}
