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

package vm

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/publicvm/avm/common"
)

// FunctionSelector identifies a function within a contract.
type FunctionSelector uint32

// Field returns the selector as a field element.
func (s FunctionSelector) Field() fr.Element {
	return common.NewField(uint64(s))
}

func (s FunctionSelector) String() string {
	return fmt.Sprintf("%#08x", uint32(s))
}

// CallContext is the immutable per-frame call information.
type CallContext struct {
	Sender               common.Address     // caller of the frame
	StorageAddress       common.Address     // contract whose storage the frame reads and writes
	Portal               ethcommon.Address  // base chain portal of the storage contract
	Selector             FunctionSelector
	IsContractDeployment bool
	IsDelegateCall       bool
	IsStaticCall         bool
}

// nested derives the context of a call made from c into target. Static
// calls stay static; deployment and delegate flags do not carry over.
func (c CallContext) nested(target common.Address, portal ethcommon.Address) CallContext {
	return CallContext{
		Sender:         c.StorageAddress,
		StorageAddress: target,
		Portal:         portal,
		IsStaticCall:   c.IsStaticCall,
	}
}

// PublicCall is a request to execute a public function.
type PublicCall struct {
	ContractAddress common.Address
	Selector        FunctionSelector
	Calldata        []fr.Element
	Context         CallContext
}
