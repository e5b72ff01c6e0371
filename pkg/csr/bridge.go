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
	"math/big"

	"github.com/consensys/go-csrbus/pkg/hw"
	"github.com/consensys/go-csrbus/pkg/util"
	"github.com/consensys/go-csrbus/pkg/util/math"
	log "github.com/sirupsen/logrus"
)

// MemoryBridge maps a memory onto the bus.  Each memory word is split into
// wordsPerEntry bus words, addressed by the low wordIndexBits bits of the bus
// address, where sub-word 0 is the most significant slice.  Writes to all but
// the last sub-word are held in holding registers, and the memory is written
// in one go when the last sub-word arrives.  When the memory spans more than
// one window, the upper bits of the memory address come from a page register
// which must be exposed through a bank.  Memory words may be of any width, and
// wider words simply need more sub-words.
//
// The holding registers are shared between all entries.  A sequence of writes
// which never reaches the last sub-word leaves stale data behind, which is then
// picked up by the next completed write to any entry.
type MemoryBridge struct {
	bus      *Interface
	memory   *hw.Memory
	address  uint64
	readOnly bool
	// Derived geometry
	wordsPerEntry uint
	wordIndexBits uint
	pageBits      uint
	midBits       uint
	// Page register (nil when not paged)
	page *Storage
	// Selection delayed by one cycle, to match the memory read latency.
	selDelayed *hw.Reg
	// Sub-word index of the previous cycle.
	wordIndex *hw.Reg
	// Holding registers for sub-words 0 .. wordsPerEntry-2.
	holding []*hw.Reg
}

// NewMemoryBridge constructs a bridge for a given memory, responding at a given
// address on the given bus.  Whether the bus may write the memory is taken
// from readOnly when given, otherwise from the memory's own hint, otherwise
// the memory is writable.
func NewMemoryBridge(memory *hw.Memory, address uint64, readOnly util.Option[bool],
	bus *Interface) (*MemoryBridge, error) {
	var (
		config        = bus.Config()
		width         = config.DataWidth
		wordsPerEntry = (memory.Width() + width - 1) / width
		wordIndexBits = math.Log2Ceil(uint64(wordsPerEntry))
		// Span of bus addresses needed for every entry to be addressable.
		span          = uint64(memory.Depth()) << wordIndexBits
		windowSize    = uint64(1) << config.WindowBits
		pageBits      = math.Log2Ceil((span + windowSize - 1) / windowSize)
		addressWidth  = memory.AddressWidth()
		bridge        *MemoryBridge
	)
	//
	if err := config.checkResponderAddress(address); err != nil {
		return nil, fmt.Errorf("memory %s: %w", memory.Name(), err)
	} else if pageBits > addressWidth || pageBits > width {
		return nil, fmt.Errorf("memory %s: %d page bits cannot be exposed (address %d bits, bus %d bits)",
			memory.Name(), pageBits, addressWidth, width)
	} else if wordIndexBits+addressWidth-pageBits > config.WindowBits {
		return nil, fmt.Errorf("memory %s: %d sub-word bits and %d address bits overflow window of %d bits",
			memory.Name(), wordIndexBits, addressWidth-pageBits, config.WindowBits)
	}
	//
	bridge = &MemoryBridge{
		bus:           bus,
		memory:        memory,
		address:       address,
		readOnly:      readOnly.UnwrapOr(memory.BusReadOnly().UnwrapOr(false)),
		wordsPerEntry: wordsPerEntry,
		wordIndexBits: wordIndexBits,
		pageBits:      pageBits,
		midBits:       addressWidth - pageBits,
		selDelayed:    hw.NewReg(1),
		wordIndex:     hw.NewReg(wordIndexBits),
	}
	//
	if pageBits > 0 {
		bridge.page = NewStorage(memory.Name()+"_page", pageBits, 0)
	}
	//
	if !bridge.readOnly && wordIndexBits > 0 {
		for i := uint(0); i+1 < wordsPerEntry; i++ {
			bridge.holding = append(bridge.holding, hw.NewReg(width))
		}
	}
	//
	log.Debugf("bridge for %s at %d: %d sub-words, %d index bits, %d page bits, read-only=%t",
		memory, address, wordsPerEntry, wordIndexBits, pageBits, bridge.readOnly)
	//
	return bridge, nil
}

// Bus returns the interface this bridge responds on.
func (p *MemoryBridge) Bus() *Interface {
	return p.bus
}

// Memory returns the memory mapped by this bridge.
func (p *MemoryBridge) Memory() *hw.Memory {
	return p.memory
}

// Address returns the responder address of this bridge.
func (p *MemoryBridge) Address() uint64 {
	return p.address
}

// ReadOnly indicates whether bus writes are ignored.
func (p *MemoryBridge) ReadOnly() bool {
	return p.readOnly
}

// WordsPerEntry returns the number of bus words making up one memory word.
func (p *MemoryBridge) WordsPerEntry() uint {
	return p.wordsPerEntry
}

// WordIndexBits returns the number of address bits selecting a sub-word.
func (p *MemoryBridge) WordIndexBits() uint {
	return p.wordIndexBits
}

// PageBits returns the width of the page register, or zero if unpaged.
func (p *MemoryBridge) PageBits() uint {
	return p.pageBits
}

// EntriesPerPage returns the number of memory entries addressable through the
// bus without changing the page register.
func (p *MemoryBridge) EntriesPerPage() uint64 {
	return uint64(1) << p.midBits
}

// Page returns the page register, or nil if this bridge is not paged.
func (p *MemoryBridge) Page() *Storage {
	return p.page
}

// Registers returns the registers this bridge needs exposed through a bank.
func (p *MemoryBridge) Registers() []Register {
	if p.page == nil {
		return nil
	}
	//
	return []Register{p.page}
}

// Selected determines whether the address currently presented on the bus falls
// within this bridge's window.
func (p *MemoryBridge) Selected() bool {
	return p.bus.Responder() == p.address
}

// Evaluate implementation for the Module interface.
func (p *MemoryBridge) Evaluate() {
	var (
		sel   = p.Selected()
		index = math.Slice(p.bus.Address, 0, p.wordIndexBits)
		write = sel && p.bus.WriteEnable && !p.readOnly
	)
	// Read path, driven entirely from registered state.
	p.bus.ReadData = 0
	//
	if p.selDelayed.Get() == 1 {
		p.bus.ReadData = p.subword(p.memory.ReadData(), p.wordIndex.Get())
	}
	//
	p.selDelayed.Set(boolToBit(sel))
	p.wordIndex.Set(index)
	// Memory address, with upper bits from the page register (if any).
	address := math.Slice(p.bus.Address, p.wordIndexBits, p.midBits)
	//
	if p.page != nil {
		address |= p.page.Value() << p.midBits
	}
	//
	p.memory.Address = address
	p.memory.WriteEnable = false
	// Write path
	switch {
	case !write:
		return
	case p.wordIndexBits == 0:
		p.memory.WriteEnable = true
		p.memory.WriteData.SetUint64(p.bus.WriteData)
	case index+1 < uint64(p.wordsPerEntry):
		p.holding[index].Set(p.bus.WriteData)
	case index+1 == uint64(p.wordsPerEntry):
		p.memory.WriteEnable = true
		p.memory.WriteData.Set(p.assemble(p.bus.WriteData))
	}
}

// Edge implementation for the Module interface.  The bridge owns the memory's
// port, and therefore clocks it.  The page register is clocked by the bank
// exposing it.
func (p *MemoryBridge) Edge() {
	p.selDelayed.Edge()
	p.wordIndex.Edge()
	//
	for _, r := range p.holding {
		r.Edge()
	}
	//
	p.memory.Edge()
}

// Extract the given sub-word of a memory word.  Sub-word 0 is the most
// significant slice.  Indices beyond the last sub-word read as zero.
func (p *MemoryBridge) subword(word *big.Int, index uint64) uint64 {
	width := p.bus.Config().DataWidth
	//
	if index >= uint64(p.wordsPerEntry) {
		return 0
	}
	//
	return math.BigSlice(word, uint(uint64(p.wordsPerEntry)-1-index)*width, width)
}

// Assemble a complete memory word from the holding registers, most significant
// first, followed by the last sub-word.
func (p *MemoryBridge) assemble(last uint64) *big.Int {
	words := make([]uint64, 0, p.wordsPerEntry)
	//
	for _, r := range p.holding {
		words = append(words, r.Get())
	}
	//
	return math.BigJoin(p.bus.Config().DataWidth, append(words, last)...)
}

func boolToBit(b bool) uint64 {
	if b {
		return 1
	}
	//
	return 0
}
