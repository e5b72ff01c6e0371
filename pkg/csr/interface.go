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

	"github.com/consensys/go-csrbus/pkg/util/math"
)

// Config determines the geometry of a bus.  This is fixed for the lifetime of
// every interface constructed from it.
type Config struct {
	// Number of address lines.
	AddressWidth uint
	// Number of data lines, in both directions.
	DataWidth uint
	// Number of low address bits decoded within a single responder.  Every
	// responder occupies one window of 2^WindowBits addresses, and the
	// remaining upper bits of the address select the responder.
	WindowBits uint
}

// DefaultConfig returns the standard bus geometry: 14 address bits, 8 data bits
// and 512 addresses per responder.
func DefaultConfig() Config {
	return Config{AddressWidth: 14, DataWidth: 8, WindowBits: 9}
}

// Validate checks that this configuration describes a usable bus.
func (c Config) Validate() error {
	switch {
	case c.DataWidth == 0 || c.DataWidth > 64:
		return fmt.Errorf("invalid data width %d (expected 1..64)", c.DataWidth)
	case c.AddressWidth == 0 || c.AddressWidth > 64:
		return fmt.Errorf("invalid address width %d (expected 1..64)", c.AddressWidth)
	case c.WindowBits >= c.AddressWidth:
		return fmt.Errorf("window of %d bits leaves no room in %d address bits", c.WindowBits, c.AddressWidth)
	}
	//
	return nil
}

// ResponderAddressWidth returns the number of address bits available for
// selecting a responder.
func (c Config) ResponderAddressWidth() uint {
	return c.AddressWidth - c.WindowBits
}

// checkResponderAddress returns an error if a given responder address cannot be
// decoded on this bus.
func (c Config) checkResponderAddress(address uint64) error {
	if address > math.Mask(c.ResponderAddressWidth()) {
		return fmt.Errorf("address %d does not fit in %d bits", address, c.ResponderAddressWidth())
	}
	//
	return nil
}

// Interface is the set of wires shared between a controller and a responder.
// The controller drives Address, WriteEnable and WriteData; the responder drives
// ReadData.  A responder which is not selected must leave ReadData at zero.
type Interface struct {
	config      Config
	Address     uint64
	WriteEnable bool
	WriteData   uint64
	ReadData    uint64
}

// NewInterface constructs a fresh, idle interface for a given bus geometry.
func NewInterface(config Config) *Interface {
	return &Interface{config: config}
}

// Config returns the geometry of this interface.
func (p *Interface) Config() Config {
	return p.config
}

// Drive sets the controller-side wires of this interface, truncating address
// and data to the bus widths.
func (p *Interface) Drive(address uint64, writeEnable bool, writeData uint64) {
	p.Address = math.Truncate(address, p.config.AddressWidth)
	p.WriteEnable = writeEnable
	p.WriteData = math.Truncate(writeData, p.config.DataWidth)
}

// Responder returns the responder address currently presented, i.e. the bits
// above the window.
func (p *Interface) Responder() uint64 {
	return p.Address >> p.config.WindowBits
}

// Interconnect connects one controller to many responders.  Every responder sees
// the controller's outgoing wires unchanged, and the controller sees the
// bitwise OR of the responders' read data.  The interconnect borrows the
// interfaces it connects.
type Interconnect struct {
	controller *Interface
	responders []*Interface
}

// NewInterconnect wires a controller to a given set of responders.
func NewInterconnect(controller *Interface, responders ...*Interface) *Interconnect {
	return &Interconnect{controller, responders}
}

// Responders returns the responder interfaces connected by this interconnect.
func (p *Interconnect) Responders() []*Interface {
	return p.responders
}

// Broadcast copies the controller's outgoing wires to every responder.
func (p *Interconnect) Broadcast() {
	for _, r := range p.responders {
		r.Address = p.controller.Address
		r.WriteEnable = p.controller.WriteEnable
		r.WriteData = p.controller.WriteData
	}
}

// Merge combines the read data of every responder onto the controller.
func (p *Interconnect) Merge() {
	data := uint64(0)
	//
	for _, r := range p.responders {
		data |= r.ReadData
	}
	//
	p.controller.ReadData = data
}
