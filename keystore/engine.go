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
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/ethkeystore/keystore-core/common"
	ecrypto "github.com/ethkeystore/keystore-core/crypto"
)

// maxScryptN bounds scrypt's memory cost so a malicious or corrupt kdf
// section can't be used to exhaust memory; spec.md §4.1 mandates rejecting
// n > 2^20 unless a caller explicitly opts in.
const maxScryptN = 1 << 20

// deriveOptions.allowLargeN lets a caller that has explicitly decided to
// accept the memory cost (reading an existing file, per spec.md §4.1's
// "unless explicitly allowed") bypass the maxScryptN ceiling that new
// derivations are held to.
type deriveOptions struct {
	allowLargeN bool
}

// derive computes the 32-byte derived key for password under kdf and salt,
// dispatching to scrypt or PBKDF2-HMAC-SHA256 per spec.md §4.2. It is
// deterministic: the same (password, kdf, salt) always yields the same dk.
func derive(password string, kdf KdfParams, salt [saltLength]byte, opts deriveOptions) ([]byte, error) {
	switch kdf.Type {
	case KdfScrypt:
		p := kdf.Scrypt
		if err := validateScryptParams(p, opts); err != nil {
			return nil, err
		}
		dk, err := scrypt.Key([]byte(password), salt[:], p.N, p.R, p.P, dkLength)
		if err != nil {
			return nil, newErr(KindInvalidKdfParam, "scrypt derivation failed", err)
		}
		return dk, nil
	case KdfPbkdf2:
		p := kdf.Pbkdf2
		if err := validatePbkdf2Params(p); err != nil {
			return nil, err
		}
		return pbkdf2.Key([]byte(password), salt[:], p.C, dkLength, sha256.New), nil
	default:
		return nil, newErr(KindInvalidKdfParam, fmt.Sprintf("unsupported kdf type %q", kdf.Type), nil)
	}
}

func validateScryptParams(p ScryptParams, opts deriveOptions) error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return newErr(KindInvalidKdfParam, "scrypt n must be a power of two greater than 1", nil)
	}
	if p.N > maxScryptN && !opts.allowLargeN {
		return newErr(KindInvalidKdfParam, fmt.Sprintf("scrypt n=%d exceeds maximum %d", p.N, maxScryptN), nil)
	}
	if p.R < 1 {
		return newErr(KindInvalidKdfParam, "scrypt r must be >= 1", nil)
	}
	if p.P < 1 {
		return newErr(KindInvalidKdfParam, "scrypt p must be >= 1", nil)
	}
	return nil
}

func validatePbkdf2Params(p Pbkdf2Params) error {
	if p.C < 1 {
		return newErr(KindInvalidKdfParam, "pbkdf2 c must be >= 1", nil)
	}
	if p.Prf != "hmac-sha256" {
		return newErr(KindInvalidKdfParam, fmt.Sprintf("unsupported prf %q", p.Prf), nil)
	}
	return nil
}

// encryptResult carries the outputs of the encrypt operation in spec.md §4.2.
type encryptResult struct {
	salt       [saltLength]byte
	iv         [ivLength]byte
	cipherText []byte
	mac        [macLength]byte
}

// encrypt draws a fresh kdf_salt and iv from the CSPRNG, derives dk from
// password under kdfParams, AES-128-CTR-encrypts plaintext under dk's
// upper half, and computes the Keccak-256 MAC over dk's lower half
// concatenated with the ciphertext.
func encrypt(password string, kdfParams KdfParams, plaintext []byte) (*encryptResult, error) {
	res := &encryptResult{}

	saltBytes, err := ecrypto.RandomBytes(saltLength)
	if err != nil {
		return nil, newErr(KindRngFailure, "draw kdf salt", err)
	}
	copy(res.salt[:], saltBytes)

	ivBytes, err := ecrypto.RandomBytes(ivLength)
	if err != nil {
		return nil, newErr(KindRngFailure, "draw cipher iv", err)
	}
	copy(res.iv[:], ivBytes)

	dk, err := derive(password, kdfParams, res.salt, deriveOptions{})
	if err != nil {
		return nil, err
	}
	defer zero(dk)

	block, err := aes.NewCipher(dk[:16])
	if err != nil {
		return nil, newErr(KindIoError, "create aes cipher", err)
	}
	res.cipherText = make([]byte, len(plaintext))
	cipher.NewCTR(block, res.iv[:]).XORKeyStream(res.cipherText, plaintext)

	mac := ecrypto.Keccak256(dk[16:32], res.cipherText)
	copy(res.mac[:], mac)

	return res, nil
}

// decrypt recomputes dk and the MAC for k under password, compares the MAC
// in constant time, and only then decrypts the ciphertext. On a MAC
// mismatch it returns ErrMacMismatch without touching the cipher, and on
// every exit path it zeroes dk and any other intermediate buffer.
func decrypt(password string, k *KeyFile) (*secret, error) {
	dk, err := derive(password, k.Kdf, k.KdfSalt, deriveOptions{allowLargeN: true})
	if err != nil {
		return nil, err
	}
	defer zero(dk)

	wantMac := ecrypto.Keccak256(dk[16:32], k.CipherText)
	if subtle.ConstantTimeCompare(wantMac, k.Mac[:]) != 1 {
		return nil, ErrMacMismatch
	}

	block, err := aes.NewCipher(dk[:16])
	if err != nil {
		return nil, newErr(KindIoError, "create aes cipher", err)
	}
	plain := make([]byte, len(k.CipherText))
	cipher.NewCTR(block, k.CipherIv[:]).XORKeyStream(plain, k.CipherText)
	defer zero(plain)

	return newSecret(plain), nil
}

// decryptAddress decrypts k's secret and recovers its Ethereum address via
// secp256k1 public-key derivation. If k declares an address, a mismatch
// between the declared and recovered address is reported as
// ErrAddressMismatch (spec.md §4.2, §9 Open Question (c)).
func decryptAddress(password string, k *KeyFile) (common.Address, error) {
	pt, err := decrypt(password, k)
	if err != nil {
		return common.Address{}, err
	}
	defer pt.Release()

	if len(pt.Bytes()) != 32 {
		return common.Address{}, newErr(KindInvalidLength, "decrypted secret is not a 32-byte private key", nil)
	}
	priv, err := ecrypto.ToECDSA(pt.Bytes())
	if err != nil {
		return common.Address{}, newErr(KindInvalidLength, "decrypted secret is not a valid private key", err)
	}
	addr := ecrypto.PubkeyToAddress(priv.PublicKey)

	if k.Address != nil && *k.Address != addr {
		return common.Address{}, ErrAddressMismatch
	}
	return addr, nil
}

// hmacSHA256 is the standalone HMAC-SHA256 primitive (spec.md §4.1).
// Nothing in this package calls it: derive's PBKDF2 path builds its own
// HMAC-SHA256 inside pbkdf2.Key from sha256.New.
func hmacSHA256(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}
