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

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Reg_00(t *testing.T) {
	r := NewRegWithReset(4, 0x1f)
	assert.Equal(t, uint64(0xf), r.Get())
	// Assignment not visible until the edge
	r.Set(0x3)
	assert.Equal(t, uint64(0xf), r.Get())
	r.Edge()
	assert.Equal(t, uint64(0x3), r.Get())
	// Unassigned registers hold their value
	r.Edge()
	assert.Equal(t, uint64(0x3), r.Get())
	// Last assignment wins, truncated to width
	r.Set(0x1)
	r.Set(0x12)
	r.Edge()
	assert.Equal(t, uint64(0x2), r.Get())
}

func Test_Memory_00(t *testing.T) {
	m, err := NewMemoryWithInit("m", 12, 8, []uint64{0xfff1, 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(0xff1), m.Peek(0))
	assert.Equal(t, uint(3), m.AddressWidth())
	assert.Equal(t, uint(8), m.Depth())
	assert.True(t, m.BusReadOnly().IsEmpty())
	// Read is registered
	m.Address = 1
	assert.Equal(t, uint64(0), m.ReadData().Uint64())
	m.Edge()
	assert.Equal(t, uint64(2), m.ReadData().Uint64())
	// Write first
	m.Address = 3
	m.WriteEnable = true
	m.WriteData.SetUint64(0x123)
	m.Edge()
	assert.Equal(t, uint64(0x123), m.ReadData().Uint64())
	assert.False(t, m.WriteEnable)
	// Out of range
	m.Address = 8
	m.WriteEnable = true
	m.Edge()
	assert.Equal(t, uint64(0), m.ReadData().Uint64())
	assert.Equal(t, "m[8 x 12]", m.String())
}

func Test_Memory_01(t *testing.T) {
	_, err := NewMemory("m", 0, 8)
	assert.Error(t, err)
	_, err = NewMemory("m", 8, 0)
	assert.Error(t, err)
	_, err = NewMemoryWithInit("m", 8, 1, []uint64{1, 2})
	assert.Error(t, err)
	//
	m, err := NewMemory("m", 8, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), m.AddressWidth())
	m.SetBusReadOnly(true)
	assert.True(t, m.BusReadOnly().Unwrap())
}

func Test_Memory_02(t *testing.T) {
	// Words wider than 64 bits are held in full, and truncated to the width.
	m, err := NewMemory("wide", 72, 4)
	require.NoError(t, err)
	//
	word, ok := new(big.Int).SetString("ff0123456789abcdef01", 16)
	require.True(t, ok)
	m.SetWord(2, word)
	assert.Equal(t, "123456789abcdef01", m.Word(2).Text(16))
	assert.Equal(t, uint64(0x23456789abcdef01), m.Peek(2))
	// Through the port
	m.Address = 1
	m.WriteEnable = true
	m.WriteData.Lsh(big.NewInt(0xab), 64)
	m.Edge()
	assert.Equal(t, "ab0000000000000000", m.ReadData().Text(16))
	assert.Equal(t, "0", m.Word(9).Text(16))
}

func Test_Simulator_00(t *testing.T) {
	// A two stage shift register: values move one stage per cycle.
	var (
		a     = NewReg(8)
		b     = NewReg(8)
		input = uint64(0)
	)
	//
	sim := NewSimulator(Stage(func() { a.Set(input) }), Stage(func() { b.Set(a.Get()) }))
	sim.Add(clocked{a}, clocked{b})
	//
	input = 7
	sim.Step()
	assert.Equal(t, uint64(7), a.Get())
	assert.Equal(t, uint64(0), b.Get())
	input = 9
	sim.Step()
	assert.Equal(t, uint64(9), a.Get())
	assert.Equal(t, uint64(7), b.Get())
	//
	sim.Run(3)
	assert.Equal(t, uint64(5), sim.Cycle())
	assert.True(t, sim.RunUntil(func() bool { return sim.Cycle() == 8 }, 10))
	assert.False(t, sim.RunUntil(func() bool { return false }, 2))
	assert.Equal(t, uint64(10), sim.Cycle())
}

// ===================================================================
// Test Helpers
// ===================================================================

type clocked struct {
	reg *Reg
}

func (p clocked) Evaluate() {}

func (p clocked) Edge() {
	p.reg.Edge()
}
