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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BankArray_00(t *testing.T) {
	var calls []string
	//
	root := check_Tree(t)
	array, err := NewBankArray(root, newCountingMap(0, &calls), DefaultConfig())
	require.NoError(t, err)
	// Memories of a child are mapped before its bank; children in order.
	assert.Equal(t, []string{"uart", "video:framebuffer", "video:palette", "video", "dma"}, calls)
	//
	banks := array.Banks()
	require.Len(t, banks, 3)
	assert.Equal(t, "uart", banks[0].Name)
	assert.Equal(t, uint64(0), banks[0].Address)
	assert.Equal(t, "video", banks[1].Name)
	assert.Equal(t, uint64(3), banks[1].Address)
	assert.Equal(t, "dma", banks[2].Name)
	assert.Equal(t, uint64(4), banks[2].Address)
	//
	bridges := array.Bridges()
	require.Len(t, bridges, 2)
	assert.Equal(t, "framebuffer", bridges[0].Memory.Name())
	assert.Equal(t, uint64(1), bridges[0].Address)
	assert.Equal(t, "palette", bridges[1].Memory.Name())
	assert.Equal(t, uint64(2), bridges[1].Address)
	// Page register folded into the owning bank, after its own registers.
	video := banks[1].Registers
	require.Len(t, video, 2)
	assert.Equal(t, "mode", video[0].Name())
	assert.Same(t, bridges[0].Bridge.Page(), video[1])
	assert.Len(t, array.Buses(), 5)
	assert.Len(t, array.Modules(), 5)
}

func Test_BankArray_01(t *testing.T) {
	// Skipped objects consume no address, and produce no responder.
	var calls []string
	//
	counter := newCountingMap(10, &calls)
	policy := func(name string, memory *hw.Memory) util.Option[uint64] {
		if name == "video" {
			return util.None[uint64]()
		}
		//
		return counter(name, memory)
	}
	//
	array, err := NewBankArray(check_Tree(t), policy, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"uart", "dma"}, calls)
	require.Len(t, array.Banks(), 2)
	assert.Equal(t, uint64(10), array.Banks()[0].Address)
	assert.Equal(t, uint64(11), array.Banks()[1].Address)
	assert.Empty(t, array.Bridges())
}

func Test_BankArray_02(t *testing.T) {
	// Skipping a memory leaves its page register out of the bank.
	policy := func(name string, memory *hw.Memory) util.Option[uint64] {
		switch {
		case memory == nil && name == "video":
			return util.Some(uint64(7))
		case memory != nil && memory.Name() == "framebuffer":
			return util.None[uint64]()
		case memory != nil:
			return util.Some(uint64(8))
		}
		//
		return util.None[uint64]()
	}
	//
	array, err := NewBankArray(check_Tree(t), policy, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, array.Banks(), 1)
	assert.Len(t, array.Banks()[0].Registers, 1)
	require.Len(t, array.Bridges(), 1)
	assert.Equal(t, "palette", array.Bridges()[0].Memory.Name())
}

func Test_BankArray_03(t *testing.T) {
	// Rescanning with a pure map reproduces the same allocation, with fresh
	// responders.
	policy := func(name string, memory *hw.Memory) util.Option[uint64] {
		address := uint64(len(name))
		if memory != nil {
			address += uint64(memory.Depth() % 17)
		}
		//
		return util.Some(address)
	}
	//
	array, err := NewBankArray(check_Tree(t), policy, DefaultConfig())
	require.NoError(t, err)
	//
	banks, bridges := array.Banks(), array.Bridges()
	require.NoError(t, array.Scan())
	require.Len(t, array.Banks(), len(banks))
	require.Len(t, array.Bridges(), len(bridges))
	//
	for i, b := range array.Banks() {
		assert.Equal(t, banks[i].Name, b.Name)
		assert.Equal(t, banks[i].Address, b.Address)
		assert.NotSame(t, banks[i].Bank, b.Bank)
	}
	//
	for i, b := range array.Bridges() {
		assert.Equal(t, bridges[i].Address, b.Address)
		assert.Same(t, bridges[i].Memory, b.Memory)
	}
}

func Test_BankArray_04(t *testing.T) {
	// A stateful map continues counting across scans.
	var calls []string
	//
	array, err := NewBankArray(check_Tree(t), newCountingMap(0, &calls), DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, array.Scan())
	assert.Len(t, calls, 10)
	assert.Equal(t, uint64(5), array.Banks()[0].Address)
}

func Test_BankArray_05(t *testing.T) {
	// Invalid addresses fail the scan, leaving nothing behind.
	var calls []string
	//
	array, err := NewBankArray(check_Tree(t), newCountingMap(0, &calls), DefaultConfig())
	require.NoError(t, err)
	//
	array.addressMap = func(name string, memory *hw.Memory) util.Option[uint64] {
		return util.Some(uint64(1000))
	}
	//
	assert.Error(t, array.Scan())
	assert.Empty(t, array.Banks())
	assert.Empty(t, array.Bridges())
	// Invalid configuration
	_, err = NewBankArray(check_Tree(t), newCountingMap(0, &calls), Config{14, 8, 14})
	assert.Error(t, err)
}

func Test_BankArray_06(t *testing.T) {
	// End-to-end: program every responder through one interconnect.
	var calls []string
	//
	config := DefaultConfig()
	root := check_Tree(t)
	array, err := NewBankArray(root, newCountingMap(0, &calls), config)
	require.NoError(t, err)
	//
	var responders []testResponder
	for _, m := range array.Modules() {
		responders = append(responders, m.(testResponder))
	}
	//
	sim, initiator := newTestBus(config, responders...)
	execute(t, sim, initiator,
		NewWrite(busAddress(config, 0, 1), 0x3c),
		NewWrite(busAddress(config, 2, 0x10), 0x99),
		NewWrite(busAddress(config, 2, 0x11), 0x66))
	//
	uart := array.Banks()[0].Registers
	assert.Equal(t, uint64(0x3c), uart[1].Value())
	assert.Equal(t, uint64(0x3c), read(t, sim, initiator, busAddress(config, 0, 1)))
	assert.Equal(t, uint64(0x9966), array.Bridges()[1].Memory.Peek(8))
	assert.Equal(t, uint64(0x99), read(t, sim, initiator, busAddress(config, 2, 0x10)))
	// Unmapped window
	assert.Equal(t, uint64(0), read(t, sim, initiator, busAddress(config, 9, 0)))
}

func Test_Component_00(t *testing.T) {
	root := NewComponent("soc")
	uart := root.NewChild("uart")
	uart.AddStorage("ctrl", 8, 0)
	tx := uart.NewChild("tx")
	tx.AddStatus("level", 4)
	fifo := tx.NewChild("fifo")
	fifo.AddStorage("depth", 8, 0)
	_, err := fifo.AddMemory("data", 8, 16, nil)
	require.NoError(t, err)
	//
	var names []string
	for _, r := range uart.Registers() {
		names = append(names, r.Name())
	}
	//
	assert.Equal(t, []string{"ctrl", "tx_level", "tx_fifo_depth"}, names)
	require.Len(t, uart.Memories(), 1)
	assert.Equal(t, "tx_fifo_data", uart.Memories()[0].Name())
	assert.Same(t, uart, tx.Parent())
	// Nodes exposing nothing are never mapped.
	root.Attach("plain", struct{}{})
	child := root.Children()[1]
	assert.Equal(t, "plain", child.Name)
	assert.Nil(t, child.Registers)
	assert.Nil(t, child.Memories)
}

// ===================================================================
// Test Helpers
// ===================================================================

// Construct a small component tree:
//
//	uart:  ctrl, data
//	video: mode; framebuffer (32 x 256, paged), palette (16 x 16)
//	audio: (nothing)
//	dma:   addr
func check_Tree(t *testing.T) *Component {
	t.Helper()
	root := NewComponent("soc")
	//
	uart := root.NewChild("uart")
	uart.AddStorage("ctrl", 8, 0)
	uart.AddStorage("data", 8, 0)
	//
	video := root.NewChild("video")
	video.AddStorage("mode", 2, 0)
	_, err := video.AddMemory("framebuffer", 32, 256, nil)
	require.NoError(t, err)
	_, err = video.AddMemory("palette", 16, 16, nil)
	require.NoError(t, err)
	//
	root.NewChild("audio")
	//
	dma := root.NewChild("dma")
	dma.AddStorage("addr", 8, 0)
	//
	return root
}
