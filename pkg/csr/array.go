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
	"github.com/consensys/go-csrbus/pkg/util"
	log "github.com/sirupsen/logrus"
)

// AddressMap determines the responder address at which to map an object
// discovered during a scan.  When memory is nil, the object is the register
// bank of the named child; otherwise, it is a memory belonging to that child.
// Returning an empty option skips the object.
//
// An address map is called exactly once for each object on every scan, in a
// stable order, and may therefore keep state (e.g. a counter handing out
// consecutive addresses).  Such a map must not be shared between concurrent
// scans.
type AddressMap func(name string, memory *hw.Memory) util.Option[uint64]

// BankEntry records a register bank produced by a scan.
type BankEntry struct {
	Name      string
	Registers []Register
	Address   uint64
	Bank      *Bank
}

// BridgeEntry records a memory bridge produced by a scan.
type BridgeEntry struct {
	Name    string
	Memory  *hw.Memory
	Address uint64
	Bridge  *MemoryBridge
}

// BankArray allocates bus addresses to every register bank and memory found
// amongst the children of a component tree, constructing a responder for each
// one.
type BankArray struct {
	source     Source
	addressMap AddressMap
	config     Config
	banks      []BankEntry
	bridges    []BridgeEntry
}

// NewBankArray constructs a bank array over a given component tree, and
// performs an initial scan.
func NewBankArray(source Source, addressMap AddressMap, config Config) (*BankArray, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	//
	array := &BankArray{source: source, addressMap: addressMap, config: config}
	//
	if err := array.Scan(); err != nil {
		return nil, err
	}
	//
	return array, nil
}

// Scan (re)builds every responder from scratch.  For each child in turn, its
// memories are mapped first, and any registers they need are added to the
// child's own registers.  A bank is then mapped for the child if it has any
// registers at all.  On failure, no responders remain.
func (p *BankArray) Scan() error {
	var (
		banks   []BankEntry
		bridges []BridgeEntry
	)
	//
	p.banks, p.bridges = nil, nil
	//
	for _, child := range p.source.Children() {
		var registers []Register
		//
		if child.Registers != nil {
			registers = append(registers, child.Registers.Registers()...)
		}
		//
		if child.Memories != nil {
			for _, memory := range child.Memories.Memories() {
				address := p.addressMap(child.Name, memory)
				//
				if address.IsEmpty() {
					log.Debugf("skipping memory %s of %s", memory.Name(), child.Name)
					continue
				}
				//
				bridge, err := NewMemoryBridge(memory, address.Unwrap(), util.None[bool](), NewInterface(p.config))
				if err != nil {
					return fmt.Errorf("%s: %w", child.Name, err)
				}
				//
				log.Debugf("mapped memory %s of %s at %d", memory.Name(), child.Name, address.Unwrap())
				registers = append(registers, bridge.Registers()...)
				bridges = append(bridges, BridgeEntry{child.Name, memory, address.Unwrap(), bridge})
			}
		}
		//
		if len(registers) == 0 {
			continue
		}
		//
		address := p.addressMap(child.Name, nil)
		//
		if address.IsEmpty() {
			log.Debugf("skipping registers of %s", child.Name)
			continue
		}
		//
		bank, err := NewBank(registers, address.Unwrap(), NewInterface(p.config))
		if err != nil {
			return fmt.Errorf("%s: %w", child.Name, err)
		}
		//
		log.Debugf("mapped %d registers of %s at %d", len(registers), child.Name, address.Unwrap())
		banks = append(banks, BankEntry{child.Name, registers, address.Unwrap(), bank})
	}
	//
	p.banks, p.bridges = banks, bridges
	//
	return nil
}

// Config returns the bus geometry of this array.
func (p *BankArray) Config() Config {
	return p.config
}

// Banks returns the register banks produced by the last scan.
func (p *BankArray) Banks() []BankEntry {
	return p.banks
}

// Bridges returns the memory bridges produced by the last scan.
func (p *BankArray) Bridges() []BridgeEntry {
	return p.bridges
}

// Buses returns the interfaces of every responder, banks first.
func (p *BankArray) Buses() []*Interface {
	var buses []*Interface
	//
	for _, b := range p.banks {
		buses = append(buses, b.Bank.Bus())
	}
	//
	for _, b := range p.bridges {
		buses = append(buses, b.Bridge.Bus())
	}
	//
	return buses
}

// Modules returns every responder as a module to be clocked, in the same order
// as Buses.
func (p *BankArray) Modules() []hw.Module {
	var modules []hw.Module
	//
	for _, b := range p.banks {
		modules = append(modules, b.Bank)
	}
	//
	for _, b := range p.bridges {
		modules = append(modules, b.Bridge)
	}
	//
	return modules
}
