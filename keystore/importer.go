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

// ImportRaw reads a foreign keystore file (geth- or parity-style, spec.md
// §4.5) and returns a normalized KeyFile. Both dialects share the same
// version-3 cryptographic schema and decode through DecodeKeyFile; the
// adapter's job is canonicalization, not reparsing:
//   - hex fields are already accepted case-insensitively by DecodeKeyFile
//   - Visible is forced to nil (geth/parity files never carry visibility)
//   - Meta, if present, is preserved as an opaque blob
//   - unknown top-level fields (parity's extra metadata) round-trip via
//     KeyFile.Extra
//
// ImportRaw rejects files whose fixed-length fields fail structural
// validation (I1/I2); it does not validate the MAC — that happens lazily
// on first decrypt, per spec.md §4.5.
func ImportRaw(data []byte) (*KeyFile, error) {
	kf, err := DecodeKeyFile(data)
	if err != nil {
		return nil, err
	}
	kf.Visible = nil
	return kf, nil
}

// ImportRawNamed is ImportRaw plus the optional name/description a caller
// supplies out-of-band when importing (the foreign file formats carry
// neither, or parity's name does not survive the canonicalization rule
// that Visible/Name/Description come from the importing caller, not the
// source file, when explicitly provided).
func ImportRawNamed(data []byte, name, description *string) (*KeyFile, error) {
	kf, err := ImportRaw(data)
	if err != nil {
		return nil, err
	}
	if name != nil {
		kf.Name = name
	}
	if description != nil {
		kf.Description = description
	}
	return kf, nil
}
