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
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/go-csrbus/pkg/csr"
	"github.com/consensys/go-csrbus/pkg/hw"
	"github.com/consensys/go-csrbus/pkg/util"
	"github.com/pkg/errors"
)

// Description is the JSON description of a system: its bus geometry and an
// ordered list of components.  Zero widths fall back to the defaults.
type Description struct {
	AddressWidth uint `json:"address_width"`
	DataWidth    uint `json:"data_width"`
	WindowBits   uint `json:"window_bits"`
	// First address handed out to objects without a fixed address.
	Base       uint64                 `json:"base"`
	Components []ComponentDescription `json:"components"`
}

// ComponentDescription describes one component, and (recursively) its children.
// Address and Skip only have meaning for top-level components, which are the
// ones allocated a bank.
type ComponentDescription struct {
	Name      string                 `json:"name"`
	Address   *uint64                `json:"address,omitempty"`
	Skip      bool                   `json:"skip,omitempty"`
	Registers []RegisterDescription  `json:"registers,omitempty"`
	Memories  []MemoryDescription    `json:"memories,omitempty"`
	Children  []ComponentDescription `json:"children,omitempty"`
}

// RegisterDescription describes a register.  Read-only registers are status
// registers, whose value is given by Reset.
type RegisterDescription struct {
	Name     string `json:"name"`
	Size     uint   `json:"size"`
	Reset    uint64 `json:"reset,omitempty"`
	ReadOnly bool   `json:"read_only,omitempty"`
}

// MemoryDescription describes a memory.
type MemoryDescription struct {
	Name     string   `json:"name"`
	Width    uint     `json:"width"`
	Depth    uint     `json:"depth"`
	Init     []uint64 `json:"init,omitempty"`
	ReadOnly *bool    `json:"read_only,omitempty"`
	Address  *uint64  `json:"address,omitempty"`
	Skip     bool     `json:"skip,omitempty"`
}

// ReadDescriptionFile reads and parses a JSON system description.
func ReadDescriptionFile(filename string) (*Description, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading description")
	}
	//
	desc, err := ParseDescription(bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	//
	return desc, nil
}

// ParseDescription parses a JSON system description.
func ParseDescription(bytes []byte) (*Description, error) {
	var desc Description
	//
	if err := json.Unmarshal(bytes, &desc); err != nil {
		return nil, errors.Wrap(err, "malformed description")
	}
	//
	return &desc, nil
}

// Config returns the bus geometry of this description.
func (d *Description) Config() csr.Config {
	config := csr.DefaultConfig()
	//
	if d.AddressWidth != 0 {
		config.AddressWidth = d.AddressWidth
	}
	//
	if d.DataWidth != 0 {
		config.DataWidth = d.DataWidth
	}
	//
	if d.WindowBits != 0 {
		config.WindowBits = d.WindowBits
	}
	//
	return config
}

// Build constructs the component tree of this description, along with the
// address map it implies: fixed addresses where given, skips where requested,
// and consecutive addresses (from Base) for everything else.
func (d *Description) Build() (*csr.Component, csr.AddressMap, error) {
	var (
		root      = csr.NewComponent("root")
		addresses = make(map[string]uint64)
		skipped   = make(map[string]bool)
		memories  = make(map[*hw.Memory]MemoryDescription)
		seen      = make(map[string]bool)
	)
	//
	for _, c := range d.Components {
		if seen[c.Name] {
			return nil, nil, fmt.Errorf("duplicate component %s", c.Name)
		}
		//
		seen[c.Name] = true
		skipped[c.Name] = c.Skip
		//
		if c.Address != nil {
			addresses[c.Name] = *c.Address
		}
		//
		if err := buildComponent(root.NewChild(c.Name), c, memories); err != nil {
			return nil, nil, errors.Wrapf(err, "component %s", c.Name)
		}
	}
	//
	sequential := Sequential(d.Base)
	//
	return root, func(name string, memory *hw.Memory) util.Option[uint64] {
		if memory == nil {
			if address, ok := addresses[name]; ok && !skipped[name] {
				return util.Some(address)
			} else if skipped[name] {
				return util.None[uint64]()
			}
		} else if m, ok := memories[memory]; ok {
			switch {
			case m.Skip:
				return util.None[uint64]()
			case m.Address != nil:
				return util.Some(*m.Address)
			case skipped[name]:
				return util.None[uint64]()
			}
		}
		//
		return sequential(name, memory)
	}, nil
}

func buildComponent(component *csr.Component, desc ComponentDescription, memories map[*hw.Memory]MemoryDescription) error {
	for _, r := range desc.Registers {
		if r.ReadOnly {
			component.AddStatus(r.Name, r.Size).Set(r.Reset)
		} else {
			component.AddStorage(r.Name, r.Size, r.Reset)
		}
	}
	//
	for _, m := range desc.Memories {
		memory, err := component.AddMemory(m.Name, m.Width, m.Depth, m.Init)
		if err != nil {
			return err
		}
		//
		if m.ReadOnly != nil {
			memory.SetBusReadOnly(*m.ReadOnly)
		}
		//
		memories[memory] = m
	}
	//
	for _, c := range desc.Children {
		if err := buildComponent(component.NewChild(c.Name), c, memories); err != nil {
			return errors.Wrapf(err, "component %s", c.Name)
		}
	}
	//
	return nil
}
