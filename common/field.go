// Copyright 2026 The go-ethereum Authors
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

package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// FieldBytes is the length of a serialized field element.
const FieldBytes = fr.Bytes

// ErrFieldOverflow is returned when a literal is not below the field modulus.
var ErrFieldOverflow = errors.New("value exceeds field modulus")

// NewField returns the field element with value v.
func NewField(v uint64) fr.Element {
	var f fr.Element
	f.SetUint64(v)
	return f
}

// Fields converts a list of small integers into field elements.
func Fields(vs ...uint64) []fr.Element {
	out := make([]fr.Element, len(vs))
	for i, v := range vs {
		out[i].SetUint64(v)
	}
	return out
}

// ParseField parses a decimal or 0x-prefixed hexadecimal literal. The value
// must be canonical, i.e. below the field modulus.
func ParseField(s string) (fr.Element, error) {
	var (
		v   *uint256.Int
		err error
	)
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			digits = "0"
		}
		v, err = uint256.FromHex("0x" + digits)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return fr.Element{}, fmt.Errorf("invalid field literal %q: %w", s, err)
	}
	var (
		f fr.Element
		b = v.Bytes32()
	)
	if err := f.SetBytesCanonical(b[:]); err != nil {
		return fr.Element{}, fmt.Errorf("%w: %s", ErrFieldOverflow, s)
	}
	return f, nil
}

// ParseFields parses a comma separated list of field literals. An empty
// string yields an empty list.
func ParseFields(list string) ([]fr.Element, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	out := make([]fr.Element, 0, len(parts))
	for _, p := range parts {
		f, err := ParseField(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// FieldToUint64 returns f as an integer if it fits in 64 bits.
func FieldToUint64(f *fr.Element) (uint64, bool) {
	if !f.IsUint64() {
		return 0, false
	}
	return f.Uint64(), true
}

// FieldHex returns the 0x-prefixed 32 byte encoding of f.
func FieldHex(f fr.Element) string {
	b := f.Bytes()
	return hexutil.Encode(b[:])
}

// FieldsToStrings formats field elements as decimal strings.
func FieldsToStrings(fs []fr.Element) []string {
	out := make([]string, len(fs))
	for i := range fs {
		out[i] = fs[i].String()
	}
	return out
}
