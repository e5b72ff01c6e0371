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
package soc

import (
	"fmt"
	"math/big"

	"github.com/consensys/go-csrbus/pkg/csr"
	"github.com/consensys/go-csrbus/pkg/hw"
	"github.com/consensys/go-csrbus/pkg/util/math"
	log "github.com/sirupsen/logrus"
)

// DefaultCycleLimit bounds the number of cycles a batch of transactions may
// take before it is considered stuck.
const DefaultCycleLimit = 1_000_000

// System ties together a component tree, the responders allocated for it, and a
// single controller driving them through an interconnect.
type System struct {
	array      *csr.BankArray
	controller *csr.Interface
	initiator  *csr.Initiator
	sim        *hw.Simulator
	// Maximum number of cycles for any one batch of transactions.
	CycleLimit uint
}

// Region describes the part of the address space occupied by one responder.
type Region struct {
	// Either "bank" or "memory"
	Kind string
	// Name of the child owning this region.
	Name string
	// Name of the memory, or empty for a bank.
	Object string
	// Responder address
	Address uint64
	// First bus address of the region
	Base uint64
	// Number of bus addresses in use
	Size uint64
	// Human readable geometry
	Detail string
	// Whether bus writes are ignored (memories only)
	ReadOnly bool
}

// NewSystem allocates responders for every child of a component tree, and
// connects them to a fresh controller.
func NewSystem(root csr.Source, addressMap csr.AddressMap, config csr.Config) (*System, error) {
	array, err := csr.NewBankArray(root, addressMap, config)
	if err != nil {
		return nil, err
	}
	//
	system := &System{array: array, CycleLimit: DefaultCycleLimit}
	system.wire()
	//
	return system, nil
}

// Rebuild rescans the component tree and rewires the system from scratch.
// Memory contents and register values are held by the tree, and are therefore
// retained.  The system is rewired even when the scan fails, in which case it
// is left with no responders, matching what the bank array reports.
func (s *System) Rebuild() error {
	err := s.array.Scan()
	s.wire()
	//
	return err
}

// Connect the responders of the bank array to a fresh controller.  The
// evaluation order places the interconnect's fan-out before the responders,
// and the merge of their read data before the initiator samples it.
func (s *System) wire() {
	s.controller = csr.NewInterface(s.array.Config())
	interconnect := csr.NewInterconnect(s.controller, s.array.Buses()...)
	s.initiator = csr.NewInitiator(s.controller)
	s.sim = hw.NewSimulator(hw.Stage(interconnect.Broadcast))
	s.sim.Add(s.array.Modules()...)
	s.sim.Add(hw.Stage(interconnect.Merge), s.initiator)
	//
	log.Debugf("wired %d banks and %d memories", len(s.array.Banks()), len(s.array.Bridges()))
}

// Config returns the bus geometry.
func (s *System) Config() csr.Config {
	return s.array.Config()
}

// Array returns the bank array allocating this system's responders.
func (s *System) Array() *csr.BankArray {
	return s.array
}

// Simulator returns the simulator clocking this system.
func (s *System) Simulator() *hw.Simulator {
	return s.sim
}

// Cycle returns the number of cycles simulated since the system was last wired.
func (s *System) Cycle() uint64 {
	return s.sim.Cycle()
}

// Execute a batch of transactions, running the simulator until all complete.
func (s *System) Execute(transactions ...*csr.Transaction) error {
	s.initiator.Submit(transactions...)
	//
	if !s.sim.RunUntil(s.initiator.Idle, s.CycleLimit) {
		return fmt.Errorf("transactions incomplete after %d cycles", s.CycleLimit)
	}
	//
	return nil
}

// Read a single bus address.
func (s *System) Read(address uint64) (uint64, error) {
	tx := csr.NewRead(address)
	err := s.Execute(tx)
	//
	return tx.Data, err
}

// Write a single bus address.
func (s *System) Write(address uint64, data uint64) error {
	return s.Execute(csr.NewWrite(address, data))
}

// Bridge returns the bridge mapping a given memory, identified either by its
// name or by its key (see Key).
func (s *System) Bridge(memory string) (csr.BridgeEntry, bool) {
	for _, b := range s.array.Bridges() {
		if b.Memory.Name() == memory || Key(b.Name, b.Memory) == memory {
			return b, true
		}
	}
	//
	return csr.BridgeEntry{}, false
}

// ReadMemory reads one entry of a mapped memory over the bus, selecting the
// page (if needed) and reading every sub-word.
func (s *System) ReadMemory(memory string, entry uint64) (*big.Int, error) {
	var words []uint64
	//
	bridge, addresses, err := s.entryAddresses(memory, entry)
	if err != nil {
		return nil, err
	}
	//
	for _, address := range addresses {
		data, err := s.Read(address)
		if err != nil {
			return nil, err
		}
		//
		words = append(words, data)
	}
	//
	word := math.BigJoin(s.Config().DataWidth, words...)
	//
	return math.BigTruncate(word, bridge.Memory().Width()), nil
}

// WriteMemory writes one entry of a mapped memory over the bus, selecting the
// page (if needed) and writing every sub-word, most significant first.
func (s *System) WriteMemory(memory string, entry uint64, word *big.Int) error {
	width := s.Config().DataWidth
	//
	bridge, addresses, err := s.entryAddresses(memory, entry)
	if err != nil {
		return err
	} else if bridge.ReadOnly() {
		return fmt.Errorf("memory %s is read-only", memory)
	}
	//
	var transactions []*csr.Transaction
	//
	for i, address := range addresses {
		chunk := math.BigSlice(word, uint(len(addresses)-1-i)*width, width)
		transactions = append(transactions, csr.NewWrite(address, chunk))
	}
	//
	return s.Execute(transactions...)
}

// Determine the bus addresses of every sub-word of a given memory entry, having
// first set the page register as needed.
func (s *System) entryAddresses(memory string, entry uint64) (*csr.MemoryBridge, []uint64, error) {
	b, ok := s.Bridge(memory)
	if !ok {
		return nil, nil, fmt.Errorf("unknown memory %s", memory)
	} else if entry >= uint64(b.Memory.Depth()) {
		return nil, nil, fmt.Errorf("entry %d out of bounds for %s", entry, b.Memory)
	}
	//
	var (
		bridge    = b.Bridge
		config    = s.Config()
		perPage   = bridge.EntriesPerPage()
		base      = b.Address<<config.WindowBits | (entry%perPage)<<bridge.WordIndexBits()
		addresses []uint64
	)
	//
	if bridge.Page() != nil {
		if err := s.selectPage(bridge.Page(), entry/perPage); err != nil {
			return nil, nil, fmt.Errorf("memory %s: %w", memory, err)
		}
	}
	//
	for i := uint64(0); i < uint64(bridge.WordsPerEntry()); i++ {
		addresses = append(addresses, base|i)
	}
	//
	return bridge, addresses, nil
}

// Program a page register over the bus, unless it already holds the page.
func (s *System) selectPage(page *csr.Storage, value uint64) error {
	if page.Value() == value {
		return nil
	}
	//
	for _, b := range s.array.Banks() {
		if index, ok := b.Bank.IndexOf(page); ok {
			return s.Write(b.Address<<s.Config().WindowBits | index, value)
		}
	}
	//
	return fmt.Errorf("page register %s is not mapped", page.Name())
}

// Map describes every region of the address space in use, banks first.
func (s *System) Map() []Region {
	var (
		config  = s.Config()
		regions []Region
	)
	//
	for _, b := range s.array.Banks() {
		n := uint64(len(b.Bank.Registers()))
		regions = append(regions, Region{
			Kind:    "bank",
			Name:    b.Name,
			Address: b.Address,
			Base:    b.Address << config.WindowBits,
			Size:    n,
			Detail:  fmt.Sprintf("%d registers, %d decode bits", n, b.Bank.DecodeBits()),
		})
	}
	//
	for _, b := range s.array.Bridges() {
		var (
			bridge  = b.Bridge
			entries = min(uint64(b.Memory.Depth()), bridge.EntriesPerPage())
			detail  = fmt.Sprintf("%d x %d bits, %d sub-words", b.Memory.Depth(), b.Memory.Width(), bridge.WordsPerEntry())
		)
		//
		if bridge.PageBits() > 0 {
			detail += fmt.Sprintf(", %d page bits", bridge.PageBits())
		}
		//
		if bridge.ReadOnly() {
			detail += ", read-only"
		}
		//
		regions = append(regions, Region{
			Kind:     "memory",
			Name:     b.Name,
			Object:   b.Memory.Name(),
			Address:  b.Address,
			Base:     b.Address << config.WindowBits,
			Size:     entries << bridge.WordIndexBits(),
			Detail:   detail,
			ReadOnly: bridge.ReadOnly(),
		})
	}
	//
	return regions
}
