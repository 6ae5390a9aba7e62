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
package hash

import (
	"github.com/cespare/xxhash/v2"
)

// A reasonably simple hashmap implementation which permits collisions.  Observe
// that, for example, hashicorp's go-set is *not* a suitable replacement here,
// since that does not handle collisions.  Specifically, it assumes the hash
// function always uniquely identifies the data in question.  I don't want to
// make that assumption here.

// Hasher provides a generic definition of a hashing function suitable for use
// within the hashmap.  This is similar to the Hasher interface provided in
// go-set, except that it additionally includes equality.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

// ============================================================================
// StringKey Implementation
// ============================================================================

var _ Hasher[StringKey] = StringKey{}

// StringKey wraps a string as something which can be safely placed into a
// HashMap.
type StringKey struct {
	value string
}

// NewStringKey constructs a new string key.
func NewStringKey(value string) StringKey {
	return StringKey{value}
}

// Equals compares two StringKeys to check whether they represent the same
// underlying string (or not).
func (p StringKey) Equals(other StringKey) bool {
	return p.value == other.value
}

// Hash generates a 64-bit hashcode from the underlying string.
func (p StringKey) Hash() uint64 {
	return xxhash.Sum64String(p.value)
}

func (p StringKey) String() string {
	return p.value
}
