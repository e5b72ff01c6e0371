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
package hw

import (
	"fmt"
	"math/big"

	"github.com/consensys/go-csrbus/pkg/util"
	"github.com/consensys/go-csrbus/pkg/util/math"
)

// Memory is a synchronous memory of depth words, each of width bits, with a
// single read/write port.  Words may be arbitrarily wide.  The port inputs are
// driven during the evaluate phase and sampled at the clock edge, where a write
// (if enabled) takes place before the read.  Hence, the read output always
// presents the word stored at the address of the previous cycle, including any
// write made to it.
type Memory struct {
	name  string
	width uint
	mask  *big.Int
	words []big.Int
	// Hint recorded against the memory as to whether a bus should be permitted
	// to modify its contents.
	busReadOnly util.Option[bool]
	// Port inputs
	Address     uint64
	WriteEnable bool
	WriteData   big.Int
	// Registered read output
	readData big.Int
}

// NewMemory constructs a memory with the given name, word width and depth,
// initialised to zero.
func NewMemory(name string, width uint, depth uint) (*Memory, error) {
	return NewMemoryWithInit(name, width, depth, nil)
}

// NewMemoryWithInit constructs a memory whose first words are loaded from a
// given initial image.
func NewMemoryWithInit(name string, width uint, depth uint, init []uint64) (*Memory, error) {
	switch {
	case width == 0:
		return nil, fmt.Errorf("memory %s: invalid word width 0", name)
	case depth == 0:
		return nil, fmt.Errorf("memory %s: invalid depth 0", name)
	case uint(len(init)) > depth:
		return nil, fmt.Errorf("memory %s: initial image has %d words (depth %d)", name, len(init), depth)
	}
	//
	memory := &Memory{
		name:        name,
		width:       width,
		mask:        math.BigMask(width),
		words:       make([]big.Int, depth),
		busReadOnly: util.None[bool](),
	}
	//
	for i, w := range init {
		memory.Poke(uint64(i), w)
	}
	//
	return memory, nil
}

// Name returns the name of this memory.
func (p *Memory) Name() string {
	return p.name
}

// Width returns the number of bits in each word.
func (p *Memory) Width() uint {
	return p.width
}

// Depth returns the number of words.
func (p *Memory) Depth() uint {
	return uint(len(p.words))
}

// AddressWidth returns the width of this memory's address port.
func (p *Memory) AddressWidth() uint {
	return math.BitsFor(uint64(len(p.words) - 1))
}

// BusReadOnly returns the hint (if any) as to whether a bus may write this
// memory.
func (p *Memory) BusReadOnly() util.Option[bool] {
	return p.busReadOnly
}

// SetBusReadOnly records whether a bus may write this memory.
func (p *Memory) SetBusReadOnly(flag bool) {
	p.busReadOnly = util.Some(flag)
}

// ReadData returns the registered read output of the port.  The result must
// not be modified.
func (p *Memory) ReadData() *big.Int {
	return &p.readData
}

// Word reads a word directly, bypassing the port.  Addresses outside the
// memory read as zero.
func (p *Memory) Word(address uint64) *big.Int {
	if address >= uint64(len(p.words)) {
		return new(big.Int)
	}
	//
	return new(big.Int).Set(&p.words[address])
}

// SetWord writes a word directly, bypassing the port.  The word is truncated
// to the memory's width, and addresses outside the memory are ignored.
func (p *Memory) SetWord(address uint64, word *big.Int) {
	if address < uint64(len(p.words)) {
		p.words[address].And(word, p.mask)
	}
}

// Peek returns the least significant 64 bits of a word, bypassing the port.
func (p *Memory) Peek(address uint64) uint64 {
	return math.BigSlice(p.Word(address), 0, 64)
}

// Poke writes a word given as an unsigned integer, bypassing the port.
func (p *Memory) Poke(address uint64, word uint64) {
	p.SetWord(address, new(big.Int).SetUint64(word))
}

// Evaluate implementation for the Module interface.  The port is driven by the
// owning module, hence there is nothing to do here.
func (p *Memory) Evaluate() {}

// Edge implementation for the Module interface.
func (p *Memory) Edge() {
	if p.WriteEnable {
		p.SetWord(p.Address, &p.WriteData)
	}
	//
	if p.Address < uint64(len(p.words)) {
		p.readData.Set(&p.words[p.Address])
	} else {
		p.readData.SetUint64(0)
	}
	// Port inputs are combinational and must be driven every cycle.
	p.WriteEnable = false
}

func (p *Memory) String() string {
	return fmt.Sprintf("%s[%d x %d]", p.name, len(p.words), p.width)
}
