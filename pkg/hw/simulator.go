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

// Module is a piece of synchronous logic driven by a single global clock.  Each
// clock cycle is split into two phases.  During Evaluate a module reads its
// inputs and current register state, drives its combinational outputs and
// schedules the values its registers take at the next edge.  During Edge the
// scheduled values become visible.  A module must not change any
// externally visible state during Evaluate other than its combinational
// outputs.
type Module interface {
	// Evaluate the combinational logic of this module for the current cycle.
	Evaluate()
	// Edge applies the rising clock edge, latching any scheduled state.
	Edge()
}

// Stage adapts a purely combinational function into a module without state.
type Stage func()

// Evaluate implementation for the Module interface.
func (p Stage) Evaluate() {
	p()
}

// Edge implementation for the Module interface.  Stages hold no state.
func (p Stage) Edge() {}

// Simulator clocks an ordered set of modules.  The order in which modules are
// added determines the evaluation order within a cycle and must therefore
// respect combinational dependencies, with drivers placed before the modules
// consuming their outputs.
type Simulator struct {
	modules []Module
	cycle   uint64
}

// NewSimulator constructs a simulator over a given set of modules.
func NewSimulator(modules ...Module) *Simulator {
	return &Simulator{modules, 0}
}

// Add appends one or more modules to the evaluation order.
func (p *Simulator) Add(modules ...Module) {
	p.modules = append(p.modules, modules...)
}

// Cycle returns the number of clock cycles completed so far.
func (p *Simulator) Cycle() uint64 {
	return p.cycle
}

// Step simulates exactly one clock cycle.
func (p *Simulator) Step() {
	for _, m := range p.modules {
		m.Evaluate()
	}
	//
	for _, m := range p.modules {
		m.Edge()
	}
	//
	p.cycle++
}

// Run simulates n clock cycles.
func (p *Simulator) Run(n uint) {
	for i := uint(0); i < n; i++ {
		p.Step()
	}
}

// RunUntil steps the simulator until a given condition holds, or the cycle
// limit is exhausted.  The condition is checked before each cycle.  Returns
// true if the condition was met.
func (p *Simulator) RunUntil(cond func() bool, limit uint) bool {
	for i := uint(0); i < limit; i++ {
		if cond() {
			return true
		}
		//
		p.Step()
	}
	//
	return cond()
}
