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

import "github.com/consensys/go-csrbus/pkg/util/math"

// Reg is a clocked register of up to 64 bits.  A value assigned with Set only
// becomes visible through Get after the next clock edge; a register which is
// not assigned during a cycle keeps its value.
type Reg struct {
	width   uint
	current uint64
	next    uint64
	pending bool
}

// NewReg constructs a register of the given width with a power-on value of
// zero.
func NewReg(width uint) *Reg {
	return NewRegWithReset(width, 0)
}

// NewRegWithReset constructs a register of the given width with a given
// power-on value.
func NewRegWithReset(width uint, reset uint64) *Reg {
	if width > 64 {
		panic("register wider than 64 bits")
	}
	//
	reset = math.Truncate(reset, width)
	//
	return &Reg{width, reset, reset, false}
}

// Width returns the number of bits held by this register.
func (p *Reg) Width() uint {
	return p.width
}

// Get the value currently visible on the register's output.
func (p *Reg) Get() uint64 {
	return p.current
}

// Set schedules a value to be latched at the next edge.  The value is truncated
// to the register's width.  When assigned more than once in a cycle, the last
// assignment wins.
func (p *Reg) Set(value uint64) {
	p.next = math.Truncate(value, p.width)
	p.pending = true
}

// Edge latches the scheduled value (if any).
func (p *Reg) Edge() {
	if p.pending {
		p.current = p.next
		p.pending = false
	}
}
