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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Interconnect_00(t *testing.T) {
	config := DefaultConfig()
	controller := NewInterface(config)
	responders := []*Interface{NewInterface(config), NewInterface(config), NewInterface(config)}
	interconnect := NewInterconnect(controller, responders...)
	//
	controller.Drive(0x3fff1, true, 0x1ab)
	interconnect.Broadcast()
	//
	for _, r := range responders {
		assert.Equal(t, uint64(0x3ff1), r.Address)
		assert.True(t, r.WriteEnable)
		assert.Equal(t, uint64(0xab), r.WriteData)
	}
	//
	responders[0].ReadData = 0x01
	responders[2].ReadData = 0x80
	interconnect.Merge()
	assert.Equal(t, uint64(0x81), controller.ReadData)
	assert.Equal(t, uint64(0x1f), controller.Responder())
}

func Test_Config_00(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, uint(5), DefaultConfig().ResponderAddressWidth())
	assert.Error(t, Config{14, 0, 9}.Validate())
	assert.Error(t, Config{14, 65, 9}.Validate())
	assert.Error(t, Config{0, 8, 0}.Validate())
	assert.Error(t, Config{9, 8, 9}.Validate())
}

func Test_Initiator_00(t *testing.T) {
	// Writes take one cycle on the bus, reads take two.
	config := DefaultConfig()
	bus := NewInterface(config)
	initiator := NewInitiator(bus)
	sim := hw.NewSimulator(initiator)
	//
	w := NewWrite(0x10, 0x55)
	r := NewRead(0x20)
	initiator.Submit(w, r)
	require.False(t, initiator.Idle())
	// Cycle 0 is idle; the write is driven at its end.
	sim.Step()
	assert.Equal(t, uint64(0x10), bus.Address)
	assert.True(t, bus.WriteEnable)
	// Write completes, read presented.
	sim.Step()
	assert.True(t, w.Done())
	assert.False(t, bus.WriteEnable)
	assert.Equal(t, uint64(0x20), bus.Address)
	// Read data sampled in the second cycle.
	sim.Step()
	assert.False(t, r.Done())
	bus.ReadData = 0x66
	sim.Step()
	assert.True(t, r.Done())
	assert.Equal(t, uint64(0x66), r.Data)
	assert.True(t, initiator.Idle())
	assert.Equal(t, uint64(4), sim.Cycle())
	assert.Equal(t, "w 0x10 0x55", w.String())
	assert.Equal(t, "r 0x20", r.String())
}
