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

import "fmt"

// Transaction is a single read or write issued on the bus by an initiator.
type Transaction struct {
	Address uint64
	Write   bool
	// Data to write or, once a read completes, the data read.
	Data uint64
	done bool
}

// NewRead constructs a read transaction for a given address.
func NewRead(address uint64) *Transaction {
	return &Transaction{Address: address}
}

// NewWrite constructs a write transaction for a given address.
func NewWrite(address uint64, data uint64) *Transaction {
	return &Transaction{Address: address, Write: true, Data: data}
}

// Done indicates whether this transaction has completed.
func (p *Transaction) Done() bool {
	return p.done
}

func (p *Transaction) String() string {
	if p.Write {
		return fmt.Sprintf("w 0x%x 0x%x", p.Address, p.Data)
	}
	//
	return fmt.Sprintf("r 0x%x", p.Address)
}

// Initiator drives a queue of transactions onto a controller interface, one at
// a time.  A write occupies the bus for one cycle.  A read presents its address
// for two cycles and samples the read data in the second, as responders answer
// one cycle after the address is presented.  The initiator must be evaluated
// after the read data of the interface has been merged.
type Initiator struct {
	bus       *Interface
	queue     []*Transaction
	current   *Transaction
	readReady bool
}

// NewInitiator constructs an idle initiator driving a given interface.
func NewInitiator(bus *Interface) *Initiator {
	return &Initiator{bus: bus}
}

// Bus returns the interface driven by this initiator.
func (p *Initiator) Bus() *Interface {
	return p.bus
}

// Submit queues one or more transactions.
func (p *Initiator) Submit(transactions ...*Transaction) {
	p.queue = append(p.queue, transactions...)
}

// Idle indicates that every submitted transaction has completed.
func (p *Initiator) Idle() bool {
	return p.current == nil && len(p.queue) == 0
}

// Evaluate implementation for the Module interface.
func (p *Initiator) Evaluate() {
	if p.current != nil && !p.current.Write && p.readReady {
		p.current.Data = p.bus.ReadData
	}
}

// Edge implementation for the Module interface.
func (p *Initiator) Edge() {
	if p.current != nil {
		if p.current.Write || p.readReady {
			p.current.done = true
			p.current = nil
			p.readReady = false
		} else {
			p.readReady = true
		}
	}
	//
	if p.current == nil && len(p.queue) > 0 {
		p.current, p.queue = p.queue[0], p.queue[1:]
		p.bus.Drive(p.current.Address, p.current.Write, p.current.Data)
	} else if p.current == nil {
		p.bus.WriteEnable = false
	}
}
