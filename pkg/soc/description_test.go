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
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDescription = `{
	"data_width": 8,
	"base": 2,
	"components": [
		{
			"name": "uart",
			"registers": [
				{"name": "ctrl", "size": 8, "reset": 3},
				{"name": "status", "size": 4, "reset": 9, "read_only": true}
			],
			"children": [
				{"name": "tx", "registers": [{"name": "level", "size": 8}]}
			]
		},
		{
			"name": "video",
			"address": 20,
			"registers": [{"name": "mode", "size": 2}],
			"memories": [
				{"name": "palette", "width": 16, "depth": 16, "init": [4660]},
				{"name": "font", "width": 8, "depth": 64, "read_only": true, "address": 30},
				{"name": "scratch", "width": 8, "depth": 16, "skip": true}
			]
		},
		{
			"name": "debug",
			"skip": true,
			"registers": [{"name": "trace", "size": 8}],
			"memories": [{"name": "log", "width": 8, "depth": 16}]
		}
	]
}`

func Test_Description_00(t *testing.T) {
	desc, err := ParseDescription([]byte(testDescription))
	require.NoError(t, err)
	//
	config := desc.Config()
	assert.Equal(t, uint(14), config.AddressWidth)
	assert.Equal(t, uint(8), config.DataWidth)
	assert.Equal(t, uint(9), config.WindowBits)
	//
	root, policy, err := desc.Build()
	require.NoError(t, err)
	system, err := NewSystem(root, policy, config)
	require.NoError(t, err)
	//
	var names []string
	for _, r := range system.Map() {
		names = append(names, fmt.Sprintf("%s@%d", r.Name, r.Address))
	}
	// uart gets the base address; palette the next; video and font are fixed.
	assert.Equal(t, []string{"uart@2", "video@20", "video@3", "video@30"}, names)
	// Registers, including nested ones, and reset values
	value, err := system.Read(2 << 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), value)
	value, err = system.Read(2<<9 | 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), value)
	//
	uart := system.Array().Banks()[0]
	assert.Equal(t, "tx_level", uart.Registers[2].Name())
	//
	word, err := system.ReadMemory("palette", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), word.Uint64())
	assert.Error(t, system.WriteMemory("font", 0, big.NewInt(1)))
}

func Test_Description_01(t *testing.T) {
	_, err := ParseDescription([]byte("{"))
	assert.Error(t, err)
	//
	desc, err := ParseDescription([]byte(`{"components": [{"name": "a"}, {"name": "a"}]}`))
	require.NoError(t, err)
	_, _, err = desc.Build()
	assert.Error(t, err)
	//
	desc, err = ParseDescription([]byte(`{"components": [{"name": "a", "memories": [{"name": "m", "width": 0, "depth": 1}]}]}`))
	require.NoError(t, err)
	_, _, err = desc.Build()
	assert.ErrorContains(t, err, "component a")
}

func Test_Description_02(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "soc.json")
	require.NoError(t, os.WriteFile(filename, []byte(testDescription), 0o600))
	//
	desc, err := ReadDescriptionFile(filename)
	require.NoError(t, err)
	assert.Len(t, desc.Components, 3)
	//
	_, err = ReadDescriptionFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
