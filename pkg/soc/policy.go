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
	"github.com/consensys/go-csrbus/pkg/csr"
	"github.com/consensys/go-csrbus/pkg/hw"
	"github.com/consensys/go-csrbus/pkg/util"
)

// Key identifies an object presented to an address map: a child's name for its
// register bank, or "child/memory" for one of its memories.
func Key(name string, memory *hw.Memory) string {
	if memory == nil {
		return name
	}
	//
	return name + "/" + memory.Name()
}

// Sequential returns an address map handing out consecutive addresses,
// starting from base.  The map is stateful, and keeps counting across scans.
func Sequential(base uint64) csr.AddressMap {
	next := base
	//
	return func(string, *hw.Memory) util.Option[uint64] {
		next++
		return util.Some(next - 1)
	}
}

// Fixed returns an address map looking up addresses by key (see Key).  Objects
// without an entry are skipped.
func Fixed(addresses map[string]uint64) csr.AddressMap {
	return func(name string, memory *hw.Memory) util.Option[uint64] {
		if address, ok := addresses[Key(name, memory)]; ok {
			return util.Some(address)
		}
		//
		return util.None[uint64]()
	}
}

// Chain returns an address map which consults each map in turn, returning the
// first address given.  Later maps are only called when earlier maps skip.
func Chain(maps ...csr.AddressMap) csr.AddressMap {
	return func(name string, memory *hw.Memory) util.Option[uint64] {
		for _, m := range maps {
			if address := m(name, memory); address.HasValue() {
				return address
			}
		}
		//
		return util.None[uint64]()
	}
}

// Except returns an address map which skips the given keys without consulting
// the underlying map, and otherwise defers to it.
func Except(addressMap csr.AddressMap, keys ...string) csr.AddressMap {
	skip := make(map[string]bool, len(keys))
	//
	for _, k := range keys {
		skip[k] = true
	}
	//
	return func(name string, memory *hw.Memory) util.Option[uint64] {
		if skip[Key(name, memory)] {
			return util.None[uint64]()
		}
		//
		return addressMap(name, memory)
	}
}
