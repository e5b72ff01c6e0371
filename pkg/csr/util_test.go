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
	"testing"

	"github.com/consensys/go-csrbus/pkg/hw"
	"github.com/consensys/go-csrbus/pkg/util"
	"github.com/stretchr/testify/require"
)

// ===================================================================
// Test Helpers
// ===================================================================

// Responder is anything which can be placed on the bus in a test.
type testResponder interface {
	hw.Module
	Bus() *Interface
}

// Connect a set of responders to a fresh controller, returning the simulator
// and the initiator driving the controller.
func newTestBus(config Config, responders ...testResponder) (*hw.Simulator, *Initiator) {
	var (
		controller = NewInterface(config)
		buses      []*Interface
		modules    []hw.Module
	)
	//
	for _, r := range responders {
		buses = append(buses, r.Bus())
		modules = append(modules, r)
	}
	//
	interconnect := NewInterconnect(controller, buses...)
	initiator := NewInitiator(controller)
	sim := hw.NewSimulator(hw.Stage(interconnect.Broadcast))
	sim.Add(modules...)
	sim.Add(hw.Stage(interconnect.Merge), initiator)
	//
	return sim, initiator
}

// Execute a sequence of transactions, failing if they do not complete.
func execute(t *testing.T, sim *hw.Simulator, initiator *Initiator, transactions ...*Transaction) {
	t.Helper()
	initiator.Submit(transactions...)
	require.True(t, sim.RunUntil(initiator.Idle, 1000), "transactions did not complete")
	//
	for _, tx := range transactions {
		require.True(t, tx.Done())
	}
}

// Read a single address
func read(t *testing.T, sim *hw.Simulator, initiator *Initiator, address uint64) uint64 {
	t.Helper()
	tx := NewRead(address)
	execute(t, sim, initiator, tx)
	//
	return tx.Data
}

// Construct an address map handing out consecutive addresses, and recording
// every call made.
func newCountingMap(base uint64, calls *[]string) AddressMap {
	next := base
	//
	return func(name string, memory *hw.Memory) util.Option[uint64] {
		key := name
		if memory != nil {
			key = name + ":" + memory.Name()
		}
		//
		*calls = append(*calls, key)
		next++
		//
		return util.Some(next - 1)
	}
}

func busAddress(config Config, responder uint64, offset uint64) uint64 {
	return responder<<config.WindowBits | offset
}
