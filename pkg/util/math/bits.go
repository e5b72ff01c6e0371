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
package math

// PowUint64 raises a given base raised to a given power.
func PowUint64(base uint64, exp uint64) uint64 {
	result := uint64(1)
	//
	for {
		if exp&1 == 1 {
			result *= base
		}
		// div 2
		exp >>= 1
		//
		if exp == 0 {
			break
		}
		//
		base *= base
	}

	return result
}

// Log2Ceil returns the smallest n such that 2^n >= x.  Both zero and one map to
// zero, since a single item needs no bits to be selected.
func Log2Ceil(x uint64) uint {
	n := uint(0)
	//
	for n < 64 && PowUint64(2, uint64(n)) < x {
		n++
	}
	//
	return n
}

// BitsFor returns the number of bits needed to represent a given unsigned value.
// At least one bit is always required, even for zero.
func BitsFor(x uint64) uint {
	n := uint(1)
	//
	for n < 64 && x>>n != 0 {
		n++
	}
	//
	return n
}

// Mask returns a word with the n least significant bits set.
func Mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	//
	return PowUint64(2, uint64(n)) - 1
}

// Slice extracts n bits from a given word, starting at bit lo.  Bits beyond the
// top of the word read as zero.
func Slice(word uint64, lo uint, n uint) uint64 {
	if lo >= 64 {
		return 0
	}
	//
	return (word >> lo) & Mask(n)
}

// Truncate a word to its n least significant bits.
func Truncate(word uint64, n uint) uint64 {
	return word & Mask(n)
}
