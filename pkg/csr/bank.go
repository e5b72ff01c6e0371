// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package csr

import (
	"fmt"

	"github.com/consensys/go-csrbus/pkg/hw"
	"github.com/consensys/go-csrbus/pkg/util/math"
)

// Bank maps an ordered list of registers onto the bus.  The bank is selected
// when the responder bits of the address match its assigned address, and the
// low decodeBits bits of the address then index the register.  Registers of
// size zero are excluded from the decode.  Reads have one cycle of latency.
type Bank struct {
	bus     *Interface
	address uint64
	// All registers given to the bank.
	registers []Register
	// Those registers which occupy an address, in index order.
	simple     []Register
	decodeBits uint
	readData   *hw.Reg
}

// NewBank constructs a bank over a given list of registers, responding at a
// given address of the given bus.  Every register must fit in one bus word,
// and the decoded registers must fit within one responder window.
func NewBank(registers []Register, address uint64, bus *Interface) (*Bank, error) {
	var (
		config = bus.Config()
		simple []Register
	)
	//
	if err := config.checkResponderAddress(address); err != nil {
		return nil, fmt.Errorf("bank: %w", err)
	}
	//
	for _, r := range registers {
		if r.Size() > config.DataWidth {
			return nil, fmt.Errorf("register %s has %d bits (bus has %d)", r.Name(), r.Size(), config.DataWidth)
		} else if r.Size() > 0 {
			simple = append(simple, r)
		}
	}
	//
	decodeBits := math.Log2Ceil(uint64(len(simple)))
	//
	if decodeBits > config.WindowBits {
		return nil, fmt.Errorf("bank: %d registers exceed window of %d bits", len(simple), config.WindowBits)
	}
	//
	return &Bank{bus, address, registers, simple, decodeBits, hw.NewReg(config.DataWidth)}, nil
}

// Bus returns the interface this bank responds on.
func (p *Bank) Bus() *Interface {
	return p.bus
}

// Address returns the responder address of this bank.
func (p *Bank) Address() uint64 {
	return p.address
}

// DecodeBits returns the number of address bits used to index registers.
func (p *Bank) DecodeBits() uint {
	return p.decodeBits
}

// Registers returns the registers occupying an address in this bank, such that
// the register at index i is decoded at offset i within the bank's window.
func (p *Bank) Registers() []Register {
	return p.simple
}

// IndexOf returns the offset at which a given register is decoded, or false if
// it is not decoded by this bank.
func (p *Bank) IndexOf(register Register) (uint64, bool) {
	for i, r := range p.simple {
		if r == register {
			return uint64(i), true
		}
	}
	//
	return 0, false
}

// Selected determines whether the address currently presented on the bus falls
// within this bank's window.
func (p *Bank) Selected() bool {
	return p.bus.Responder() == p.address
}

// Evaluate implementation for the Module interface.
func (p *Bank) Evaluate() {
	var (
		sel   = p.Selected()
		index = math.Slice(p.bus.Address, 0, p.decodeBits)
		next  = uint64(0)
	)
	// Write strobes
	for i, r := range p.simple {
		strobe := sel && p.bus.WriteEnable && index == uint64(i)
		r.Drive(strobe, math.Truncate(p.bus.WriteData, r.Size()))
	}
	// Read data is cleared every cycle unless the bank is selected.
	if sel && index < uint64(len(p.simple)) {
		next = p.simple[index].Value()
	}
	//
	p.readData.Set(next)
	p.bus.ReadData = p.readData.Get()
}

// Edge implementation for the Module interface.
func (p *Bank) Edge() {
	p.readData.Edge()
	//
	for _, r := range p.registers {
		r.Edge()
	}
}
