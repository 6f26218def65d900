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
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ethkeystore/keystore-core/common"
)

const (
	version3 = 3

	// Fixed field sizes enforced by invariants I1/I2 in spec.md §3.
	dkLength    = 32
	saltLength  = 32
	ivLength    = 16
	macLength   = 32
	cipherAES128CTR = "aes-128-ctr"
)

// KdfType distinguishes the two supported password-based KDFs.
type KdfType string

const (
	KdfScrypt KdfType = "scrypt"
	KdfPbkdf2 KdfType = "pbkdf2"
)

// KdfParams is the tagged union of scrypt or PBKDF2 parameters from
// spec.md §3. Exactly one of the two embedded structs is meaningful,
// selected by Type.
type KdfParams struct {
	Type   KdfType
	Scrypt ScryptParams
	Pbkdf2 Pbkdf2Params
}

// ScryptParams holds RFC 7914 scrypt cost parameters.
type ScryptParams struct {
	N int
	R int
	P int
}

// Pbkdf2Params holds PBKDF2-HMAC-SHA256 parameters.
type Pbkdf2Params struct {
	C   int
	Prf string // always "hmac-sha256"
}

// KeyFile is the in-memory representation of one encrypted secret: the
// Web3 Secret Storage record described in spec.md §3 and §6.
type KeyFile struct {
	Id          uuid.UUID
	Address     *common.Address // nil when absent
	DkLength    int
	Kdf         KdfParams
	KdfSalt     [saltLength]byte
	Cipher      string
	CipherIv    [ivLength]byte
	CipherText  []byte
	Mac         [macLength]byte
	Name        *string
	Description *string
	Visible     *bool
	Meta        json.RawMessage // opaque; preserved on round-trip

	// Extra preserves unknown top-level fields from an imported file so
	// round-tripping an import doesn't silently drop data (spec.md §6).
	Extra map[string]json.RawMessage
}

// --- canonical JSON schema (version 3) -------------------------------------

type cipherParamsJSON struct {
	IV string `json:"iv"`
}

type scryptParamsJSON struct {
	DkLen int    `json:"dklen"`
	Salt  string `json:"salt"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
}

type pbkdf2ParamsJSON struct {
	DkLen int    `json:"dklen"`
	Salt  string `json:"salt"`
	C     int    `json:"c"`
	Prf   string `json:"prf"`
}

type cryptoJSON struct {
	Cipher       string            `json:"cipher"`
	CipherParams cipherParamsJSON  `json:"cipherparams"`
	CipherText   string            `json:"ciphertext"`
	Kdf          string            `json:"kdf"`
	KdfParams    json.RawMessage   `json:"kdfparams"`
	Mac          string            `json:"mac"`
}

type keyFileJSON struct {
	Version     int             `json:"version"`
	Id          string          `json:"id"`
	Address     *string         `json:"address,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Visible     *bool           `json:"visible,omitempty"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	Crypto      *cryptoJSON     `json:"crypto,omitempty"`
	CryptoLeg   *cryptoJSON     `json:"Crypto,omitempty"` // legacy capitalization, spec.md §6
}

// Encode renders k as canonical version-3 Web3 Secret Storage JSON:
// lowercase hex, lowercase field names, "crypto" (not legacy "Crypto").
func (k *KeyFile) Encode() ([]byte, error) {
	if err := k.validateLengths(); err != nil {
		return nil, err
	}
	out := keyFileJSON{
		Version:     version3,
		Id:          k.Id.String(),
		Name:        k.Name,
		Description: k.Description,
		Visible:     k.Visible,
		Meta:        k.Meta,
	}
	if k.Address != nil {
		addr := k.Address.Hex()
		out.Address = &addr
	}

	kdfName, kdfParams, err := encodeKdfParams(k.Kdf, k.KdfSalt)
	if err != nil {
		return nil, err
	}
	out.Crypto = &cryptoJSON{
		Cipher: k.Cipher,
		CipherParams: cipherParamsJSON{
			IV: hex.EncodeToString(k.CipherIv[:]),
		},
		CipherText: hex.EncodeToString(k.CipherText),
		Kdf:        kdfName,
		KdfParams:  kdfParams,
		Mac:        hex.EncodeToString(k.Mac[:]),
	}

	buf, err := json.Marshal(out)
	if err != nil {
		return nil, newErr(KindInvalidJSON, "encode keyfile", err)
	}
	if len(k.Extra) > 0 {
		buf, err = mergeExtra(buf, k.Extra)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeKdfParams(p KdfParams, salt [saltLength]byte) (string, json.RawMessage, error) {
	saltHex := hex.EncodeToString(salt[:])
	switch p.Type {
	case KdfScrypt:
		raw, err := json.Marshal(scryptParamsJSON{
			DkLen: dkLength, Salt: saltHex, N: p.Scrypt.N, R: p.Scrypt.R, P: p.Scrypt.P,
		})
		return string(KdfScrypt), raw, err
	case KdfPbkdf2:
		raw, err := json.Marshal(pbkdf2ParamsJSON{
			DkLen: dkLength, Salt: saltHex, C: p.Pbkdf2.C, Prf: p.Pbkdf2.Prf,
		})
		return string(KdfPbkdf2), raw, err
	default:
		return "", nil, newErr(KindInvalidKdfParam, fmt.Sprintf("unknown kdf type %q", p.Type), nil)
	}
}

// mergeExtra re-marshals buf with extra fields injected at the top level,
// used when re-encoding an imported file whose unknown fields must survive
// round-tripping (spec.md §6).
func mergeExtra(buf []byte, extra map[string]json.RawMessage) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, newErr(KindInvalidJSON, "merge extra fields", err)
	}
	for k, v := range extra {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	out, err := json.Marshal(m)
	if err != nil {
		return nil, newErr(KindInvalidJSON, "merge extra fields", err)
	}
	return out, nil
}

// DecodeKeyFile parses canonical or legacy-cased version-3 JSON into a
// KeyFile. Hex fields are accepted case-insensitively; fixed-length fields
// are validated against I1/I2 structurally. MAC validity is not checked
// here — that happens lazily on first decrypt, per spec.md §4.5.
func DecodeKeyFile(data []byte) (*KeyFile, error) {
	var raw keyFileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newErr(KindInvalidJSON, "decode keyfile", err)
	}
	crypto := raw.Crypto
	if crypto == nil {
		crypto = raw.CryptoLeg
	}
	if crypto == nil {
		return nil, newErr(KindInvalidJSON, "missing crypto section", nil)
	}

	id, err := uuid.Parse(raw.Id)
	if err != nil {
		return nil, newErr(KindInvalidHex, "invalid uuid", err)
	}

	k := &KeyFile{
		Id:          id,
		DkLength:    dkLength,
		Name:        raw.Name,
		Description: raw.Description,
		Visible:     raw.Visible,
		Meta:        raw.Meta,
		Cipher:      crypto.Cipher,
	}

	if raw.Address != nil {
		addr, err := decodeFixedHex(*raw.Address, common.AddressLength)
		if err != nil {
			return nil, err
		}
		a := common.BytesToAddress(addr)
		k.Address = &a
	}

	iv, err := decodeFixedHex(crypto.CipherParams.IV, ivLength)
	if err != nil {
		return nil, err
	}
	copy(k.CipherIv[:], iv)

	ct, err := hex.DecodeString(crypto.CipherText)
	if err != nil {
		return nil, newErr(KindInvalidHex, "ciphertext", err)
	}
	k.CipherText = ct

	mac, err := decodeFixedHex(crypto.Mac, macLength)
	if err != nil {
		return nil, err
	}
	copy(k.Mac[:], mac)

	kdf, salt, err := decodeKdfParams(crypto.Kdf, crypto.KdfParams)
	if err != nil {
		return nil, err
	}
	k.Kdf = kdf
	copy(k.KdfSalt[:], salt)

	// Preserve unrecognized top-level fields for round-tripping imports.
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err == nil {
		known := map[string]bool{
			"version": true, "id": true, "address": true, "name": true,
			"description": true, "visible": true, "meta": true,
			"crypto": true, "Crypto": true,
		}
		for key, v := range m {
			if !known[key] {
				if k.Extra == nil {
					k.Extra = map[string]json.RawMessage{}
				}
				k.Extra[key] = v
			}
		}
	}

	return k, nil
}

func decodeKdfParams(name string, raw json.RawMessage) (KdfParams, []byte, error) {
	switch KdfType(name) {
	case KdfScrypt:
		var p scryptParamsJSON
		if err := json.Unmarshal(raw, &p); err != nil {
			return KdfParams{}, nil, newErr(KindInvalidJSON, "scrypt kdfparams", err)
		}
		if p.DkLen != dkLength {
			return KdfParams{}, nil, newErr(KindInvalidLength, fmt.Sprintf("dklen must be %d, got %d", dkLength, p.DkLen), nil)
		}
		salt, err := decodeFixedHex(p.Salt, saltLength)
		if err != nil {
			return KdfParams{}, nil, err
		}
		return KdfParams{Type: KdfScrypt, Scrypt: ScryptParams{N: p.N, R: p.R, P: p.P}}, salt, nil
	case KdfPbkdf2:
		var p pbkdf2ParamsJSON
		if err := json.Unmarshal(raw, &p); err != nil {
			return KdfParams{}, nil, newErr(KindInvalidJSON, "pbkdf2 kdfparams", err)
		}
		if p.DkLen != dkLength {
			return KdfParams{}, nil, newErr(KindInvalidLength, fmt.Sprintf("dklen must be %d, got %d", dkLength, p.DkLen), nil)
		}
		salt, err := decodeFixedHex(p.Salt, saltLength)
		if err != nil {
			return KdfParams{}, nil, err
		}
		return KdfParams{Type: KdfPbkdf2, Pbkdf2: Pbkdf2Params{C: p.C, Prf: p.Prf}}, salt, nil
	default:
		return KdfParams{}, nil, newErr(KindInvalidKdfParam, fmt.Sprintf("unknown kdf %q", name), nil)
	}
}

func decodeFixedHex(s string, n int) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, newErr(KindInvalidHex, fmt.Sprintf("field with expected length %d", n), err)
	}
	if len(b) != n {
		return nil, newErr(KindInvalidLength, fmt.Sprintf("expected %d bytes, got %d", n, len(b)), nil)
	}
	return b, nil
}

// validateLengths checks invariants I1/I2 structurally before encoding.
func (k *KeyFile) validateLengths() error {
	if k.DkLength != dkLength {
		return newErr(KindInvalidLength, "dk_length must be 32", nil)
	}
	if k.Cipher == "" {
		k.Cipher = cipherAES128CTR
	}
	return nil
}
