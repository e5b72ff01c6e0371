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
	"github.com/consensys/go-csrbus/pkg/hw"
	"github.com/consensys/go-csrbus/pkg/util/math"
)

// Register describes a single bus-visible register of at most one bus word.  A
// bank drives each register every cycle: the strobe is asserted when the bus
// writes the register, in which case value holds the written data (truncated to
// the register's size).  How the written value is stored or acted upon is up
// to the register itself.
type Register interface {
	// Name of this register.
	Name() string
	// Size of this register in bits.  Registers of size zero occupy no
	// address.
	Size() uint
	// Drive the write strobe and write value for the current cycle.
	Drive(strobe bool, value uint64)
	// Value returns the value presented when the register is read.
	Value() uint64
	// Edge applies the clock edge.
	Edge()
}

// Storage is a register whose value is written by the bus and held until the
// next write.
type Storage struct {
	name    string
	storage *hw.Reg
	strobe  bool
}

// NewStorage constructs a storage register with a given name, size and reset
// value.
func NewStorage(name string, size uint, reset uint64) *Storage {
	return &Storage{name, hw.NewRegWithReset(size, reset), false}
}

// Name implementation for the Register interface.
func (p *Storage) Name() string {
	return p.name
}

// Size implementation for the Register interface.
func (p *Storage) Size() uint {
	return p.storage.Width()
}

// Drive implementation for the Register interface.
func (p *Storage) Drive(strobe bool, value uint64) {
	p.strobe = strobe
	//
	if strobe {
		p.storage.Set(value)
	}
}

// Value implementation for the Register interface.
func (p *Storage) Value() uint64 {
	return p.storage.Get()
}

// Strobed indicates whether the bus is writing this register in the current
// cycle.
func (p *Storage) Strobed() bool {
	return p.strobe
}

// Edge implementation for the Register interface.
func (p *Storage) Edge() {
	p.storage.Edge()
	p.strobe = false
}

// Status is a register whose value is supplied by the hardware it belongs to.
// Bus writes are ignored.
type Status struct {
	name  string
	size  uint
	value uint64
}

// NewStatus constructs a status register with a given name and size.
func NewStatus(name string, size uint) *Status {
	return &Status{name, size, 0}
}

// Name implementation for the Register interface.
func (p *Status) Name() string {
	return p.name
}

// Size implementation for the Register interface.
func (p *Status) Size() uint {
	return p.size
}

// Set the value presented by this register.
func (p *Status) Set(value uint64) {
	p.value = math.Truncate(value, p.size)
}

// Drive implementation for the Register interface.
func (p *Status) Drive(strobe bool, value uint64) {}

// Value implementation for the Register interface.
func (p *Status) Value() uint64 {
	return p.value
}

// Edge implementation for the Register interface.
func (p *Status) Edge() {}
