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
)

// RegisterSource is implemented by components exposing bus registers.
type RegisterSource interface {
	// Registers returns the exposed registers, in a stable order.
	Registers() []Register
}

// MemorySource is implemented by components exposing memories.
type MemorySource interface {
	// Memories returns the exposed memories, in a stable order.
	Memories() []*hw.Memory
}

// Source is the root of a component tree, as scanned by a bank array.  The
// order of children must be the same every time Children is called, since
// address allocation may depend on it.
type Source interface {
	Children() []Child
}

// Child is a named child of a component tree, whose capabilities were resolved
// when it was attached.  Either capability may be nil.
type Child struct {
	Name      string
	Registers RegisterSource
	Memories  MemorySource
}

// NewChild resolves the capabilities of a given node.  A node exposing neither
// capability yields a child which is never mapped.
func NewChild(name string, node any) Child {
	child := Child{Name: name}
	//
	if rs, ok := node.(RegisterSource); ok {
		child.Registers = rs
	}
	//
	if ms, ok := node.(MemorySource); ok {
		child.Memories = ms
	}
	//
	return child
}

// Component is a general purpose node of a component tree.  A component holds
// registers and memories in declaration order, together with any number of
// named children.  When listing registers and memories, those of its children
// are included (after its own), and their names are qualified with the chain
// of child names leading to them (e.g. "tx_level").
type Component struct {
	name   string
	parent *Component
	// Prefix applied to the names of registers and memories created here.
	prefix    string
	registers []Register
	memories  []*hw.Memory
	children  []Child
}

// NewComponent constructs a root component with a given name.
func NewComponent(name string) *Component {
	return &Component{name: name}
}

// Name returns the name of this component.
func (p *Component) Name() string {
	return p.name
}

// Parent returns the component this was created from, or nil for a root.
func (p *Component) Parent() *Component {
	return p.parent
}

// NewChild creates and attaches a fresh child component.  Names within a
// direct child of a root are unqualified, since the child's own name
// identifies its bank; names within deeper descendants are qualified by each
// intermediate component name.
func (p *Component) NewChild(name string) *Component {
	child := &Component{name: name, parent: p}
	//
	if p.parent != nil {
		child.prefix = p.prefix + name + "_"
	}
	//
	p.children = append(p.children, NewChild(name, child))
	//
	return child
}

// Attach an arbitrary node as a named child of this component.  Its
// capabilities are resolved now.
func (p *Component) Attach(name string, node any) {
	p.children = append(p.children, NewChild(name, node))
}

// Children implementation for the Source interface.
func (p *Component) Children() []Child {
	return p.children
}

// AddStorage creates a bus-writable register in this component.
func (p *Component) AddStorage(name string, size uint, reset uint64) *Storage {
	r := NewStorage(p.prefix+name, size, reset)
	p.registers = append(p.registers, r)
	//
	return r
}

// AddStatus creates a bus-readable status register in this component.
func (p *Component) AddStatus(name string, size uint) *Status {
	r := NewStatus(p.prefix+name, size)
	p.registers = append(p.registers, r)
	//
	return r
}

// AddRegister adds an existing register to this component.
func (p *Component) AddRegister(r Register) {
	p.registers = append(p.registers, r)
}

// AddMemory creates a memory in this component.
func (p *Component) AddMemory(name string, width uint, depth uint, init []uint64) (*hw.Memory, error) {
	m, err := hw.NewMemoryWithInit(p.prefix+name, width, depth, init)
	//
	if err == nil {
		p.memories = append(p.memories, m)
	}
	//
	return m, err
}

// Registers implementation for the RegisterSource interface.
func (p *Component) Registers() []Register {
	registers := append([]Register(nil), p.registers...)
	//
	for _, c := range p.children {
		if c.Registers != nil {
			registers = append(registers, c.Registers.Registers()...)
		}
	}
	//
	return registers
}

// Memories implementation for the MemorySource interface.
func (p *Component) Memories() []*hw.Memory {
	memories := append([]*hw.Memory(nil), p.memories...)
	//
	for _, c := range p.children {
		if c.Memories != nil {
			memories = append(memories, c.Memories.Memories()...)
		}
	}
	//
	return memories
}
