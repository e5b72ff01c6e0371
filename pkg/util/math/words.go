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

import "math/big"

// BigMask returns an unbounded integer with the n least significant bits set.
func BigMask(n uint) *big.Int {
	mask := big.NewInt(1)
	mask.Lsh(mask, n)
	//
	return mask.Sub(mask, big.NewInt(1))
}

// BigTruncate reduces a non-negative integer to its n least significant bits,
// returning a fresh value.
func BigTruncate(word *big.Int, n uint) *big.Int {
	return new(big.Int).And(word, BigMask(n))
}

// BigSlice extracts n bits (at most 64) from an unbounded word, starting at bit
// lo.  Bits beyond the top of the word read as zero.
func BigSlice(word *big.Int, lo uint, n uint) uint64 {
	var slice big.Int
	//
	slice.Rsh(word, lo)
	slice.And(&slice, BigMask(min(n, 64)))
	//
	return slice.Uint64()
}

// BigJoin concatenates words of n bits each (at most 64), with the first word
// being the most significant.
func BigJoin(n uint, words ...uint64) *big.Int {
	var (
		result = new(big.Int)
		word   big.Int
	)
	//
	for _, w := range words {
		result.Lsh(result, n)
		result.Or(result, word.SetUint64(Truncate(w, n)))
	}
	//
	return result
}
