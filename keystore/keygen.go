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
	"github.com/google/uuid"

	ecrypto "github.com/ethkeystore/keystore-core/crypto"
)

// SecurityLevel selects a preset KDF cost, per spec.md §4.3.
type SecurityLevel int

const (
	Normal SecurityLevel = iota
	High
	UltraHigh
)

// scryptParamsFor maps a SecurityLevel to concrete scrypt cost parameters.
func scryptParamsFor(level SecurityLevel) ScryptParams {
	switch level {
	case High:
		return ScryptParams{N: 1 << 15, R: 8, P: 1}
	case UltraHigh:
		return ScryptParams{N: 1 << 18, R: 8, P: 1}
	default:
		return ScryptParams{N: 1 << 12, R: 8, P: 1}
	}
}

// pbkdf2ParamsFor is the documented PBKDF2 profile an implementation may
// offer as an alternative to scrypt (spec.md §4.3): a single cost,
// independent of SecurityLevel, matching the c=262144 figure the spec
// calls out.
func pbkdf2ParamsFor() Pbkdf2Params {
	return Pbkdf2Params{C: 262144, Prf: "hmac-sha256"}
}

// New generates a fresh 32-byte secret using the system CSPRNG, encrypts it
// under password with the scrypt cost preset for level, and returns the
// resulting KeyFile with Address populated and Name/Description/Visible
// left absent, per spec.md §4.3.
func New(password string, level SecurityLevel) (*KeyFile, error) {
	return newWithKdf(password, KdfParams{Type: KdfScrypt, Scrypt: scryptParamsFor(level)})
}

// NewPbkdf2 is the PBKDF2 analogue of New, for callers that prefer the
// PBKDF2 profile documented in spec.md §4.3 over scrypt.
func NewPbkdf2(password string) (*KeyFile, error) {
	return newWithKdf(password, KdfParams{Type: KdfPbkdf2, Pbkdf2: pbkdf2ParamsFor()})
}

func newWithKdf(password string, kdf KdfParams) (*KeyFile, error) {
	priv, err := ecrypto.GenerateKey()
	if err != nil {
		return nil, newErr(KindRngFailure, "generate private key", err)
	}
	plain := ecrypto.FromECDSA(priv)
	defer zero(plain)

	enc, err := encrypt(password, kdf, plain)
	if err != nil {
		return nil, err
	}

	addr := ecrypto.PubkeyToAddress(priv.PublicKey)
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, newErr(KindRngFailure, "generate uuid", err)
	}

	return &KeyFile{
		Id:         id,
		Address:    &addr,
		DkLength:   dkLength,
		Kdf:        kdf,
		KdfSalt:    enc.salt,
		Cipher:     cipherAES128CTR,
		CipherIv:   enc.iv,
		CipherText: enc.cipherText,
		Mac:        enc.mac,
	}, nil
}
