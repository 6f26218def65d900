// Copyright 2015 The go-ethereum Authors
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

// Package common holds the small value types shared across the keystore
// core: the 20-byte Ethereum address and hex encode/decode helpers.
package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the expected length of an Ethereum address, in bytes.
const AddressLength = 20

// Address represents the 20-byte address of an Ethereum account.
type Address [AddressLength]byte

// BytesToAddress returns Address with value b.
// If b is larger than AddressLength, b will be cropped from the left.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress returns Address with byte values of s.
// s may carry an optional "0x"/"0X" prefix and may use mixed case;
// the canonical in-memory form is always the raw bytes.
func HexToAddress(s string) Address {
	return BytesToAddress(FromHex(s))
}

// IsHexAddress verifies whether a string can represent a valid hex-encoded
// Ethereum address or not.
func IsHexAddress(s string) bool {
	s = trimPrefix(s)
	if len(s) != 2*AddressLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// SetBytes sets the address to the value of b. If b is larger than
// len(a), b will be cropped from the left.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Bytes returns the raw bytes of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the canonical lowercase hex form of the address without a
// "0x" prefix, per spec.md §3 (I6): addresses are stored and compared
// case-insensitively, but the canonical persisted form is lowercase hex.
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

// String implements fmt.Stringer, returning the "0x"-prefixed hex form
// used in user-facing output and error messages.
func (a Address) String() string { return "0x" + a.Hex() }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// MarshalText implements encoding.TextMarshaler, emitting the "0x"-prefixed
// lowercase hex form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts either the
// 0x-prefixed or bare hex form, uppercase or lowercase.
func (a *Address) UnmarshalText(input []byte) error {
	raw := trimPrefix(string(input))
	if len(raw) != 2*AddressLength {
		return fmt.Errorf("common: invalid address length %d", len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("common: invalid address hex: %w", err)
	}
	a.SetBytes(b)
	return nil
}

func trimPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// FromHex returns the bytes represented by the hexadecimal string s, which
// may carry an optional "0x"/"0X" prefix. Invalid input yields nil, mirroring
// the teacher's permissive best-effort decoder used at call sites that have
// already validated length elsewhere.
func FromHex(s string) []byte {
	s = trimPrefix(s)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// Bytes2Hex returns the lowercase hex encoding of b.
func Bytes2Hex(b []byte) string { return hex.EncodeToString(b) }

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
