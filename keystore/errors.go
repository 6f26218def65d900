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

import "fmt"

// Kind classifies the errors the keystore core can surface. Every storage
// backend maps its own failures onto this one taxonomy (spec.md §7), so
// callers never need to know whether they're talking to the directory or
// the embedded-database implementation.
type Kind int

const (
	_ Kind = iota
	// KindNotFound indicates a requested address or file does not exist.
	KindNotFound
	// KindMacMismatch indicates a wrong password or a tampered record.
	KindMacMismatch
	// KindAddressMismatch indicates the address recovered from the
	// decrypted secret does not match the address declared in the file.
	KindAddressMismatch
	// KindInvalidKdfParam indicates a KDF parameter (n, r, p, c) is out
	// of the allowed range.
	KindInvalidKdfParam
	// KindInvalidLength indicates a fixed-length field has the wrong size.
	KindInvalidLength
	// KindInvalidHex indicates a hex field failed to parse.
	KindInvalidHex
	// KindInvalidJSON indicates the key file JSON failed to parse.
	KindInvalidJSON
	// KindDuplicate indicates a uuid collision on put.
	KindDuplicate
	// KindIoError indicates an underlying storage failure.
	KindIoError
	// KindRngFailure indicates the system CSPRNG is unavailable.
	KindRngFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindMacMismatch:
		return "mac mismatch"
	case KindAddressMismatch:
		return "address mismatch"
	case KindInvalidKdfParam:
		return "invalid kdf parameter"
	case KindInvalidLength:
		return "invalid length"
	case KindInvalidHex:
		return "invalid hex"
	case KindInvalidJSON:
		return "invalid json"
	case KindDuplicate:
		return "duplicate"
	case KindIoError:
		return "io error"
	case KindRngFailure:
		return "rng failure"
	default:
		return "unknown"
	}
}

// Error is the single error type the keystore core returns. Kind lets a
// caller branch on the taxonomy in spec.md §7 regardless of which storage
// backend produced the failure; Err, when present, carries the wrapped
// underlying cause for %w-style unwrapping.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keystore: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("keystore: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinel errors for use with errors.Is against the common cases. Each
// carries a short generic message and no wrapped cause; since Is compares
// Kind only, any *Error of the same Kind matches them.
var (
	ErrNotFound         = &Error{Kind: KindNotFound, Msg: "no matching record"}
	ErrMacMismatch      = &Error{Kind: KindMacMismatch, Msg: "wrong passphrase or corrupt keyfile"}
	ErrAddressMismatch  = &Error{Kind: KindAddressMismatch, Msg: "recovered address does not match keyfile"}
	ErrDuplicate        = &Error{Kind: KindDuplicate, Msg: "uuid already present in storage"}
)
