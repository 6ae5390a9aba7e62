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
	"fmt"
	"testing"

	"github.com/consensys/go-eqsat/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HashMap_01(t *testing.T) {
	items := []uint{1, 2, 3, 4, 3, 2, 1}
	check_HashMap(t, items)
}

func Test_HashMap_02(t *testing.T) {
	items := util.GenerateRandomInputs(10, 32)
	check_HashMap(t, items)
}

func Test_HashMap_03(t *testing.T) {
	items := util.GenerateRandomInputs(100, 32)
	check_HashMap(t, items)
}

func Test_HashMap_04(t *testing.T) {
	items := util.GenerateRandomInputs(1000, 32)
	check_HashMap(t, items)
}

func Test_HashMap_05(t *testing.T) {
	items := util.GenerateRandomInputs(100000, 32)
	check_HashMap(t, items)
}

func Test_HashMap_06(t *testing.T) {
	items := util.GenerateRandomInputs(1000, 64)
	check_HashMap_Remove(t, items)
}

func Test_HashMap_07(t *testing.T) {
	hmap := NewMap[StringKey, int](0)
	//
	assert.False(t, hmap.Insert(NewStringKey("<<"), 1))
	assert.True(t, hmap.Insert(NewStringKey("<<"), 2))
	assert.False(t, hmap.Insert(NewStringKey(">>"), 3))
	//
	v, ok := hmap.Get(NewStringKey("<<"))
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, uint(2), hmap.Size())
	assert.Len(t, hmap.KeyValues(), 2)
}

func TestSlow_HashMap_08(t *testing.T) {
	items := util.GenerateRandomInputs(100000, 64)
	check_HashMap(t, items)
	check_HashMap_Remove(t, items)
}

func TestSlow_HashMap_09(t *testing.T) {
	items := util.GenerateRandomInputs(100000, 128)
	check_HashMap(t, items)
	check_HashMap_Remove(t, items)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_HashMap(t *testing.T, items []uint) {
	gmap := initGoMap(items)
	hmap := NewMap[testKey, uint](0)
	// Insert items
	for key, val := range gmap {
		hmap.Insert(testKey{key}, val)
	}
	// Sanity check number of unique items
	if hmap.Size() != uint(len(gmap)) {
		t.Errorf("expected %d items, got %d: %s", len(gmap), hmap.Size(), hmap.String())
	}
	// Sanity check containership
	for key, val := range gmap {
		if !hmap.ContainsKey(testKey{key}) {
			t.Errorf("missing key %d: %s", key, hmap.String())
		} else if v, ok := hmap.Get(testKey{key}); !ok {
			t.Errorf("missing item %d=>%d: %s", key, val, hmap.String())
		} else if v != val {
			t.Errorf("expecting %d=>%d, got %d=>%d: %s", key, val, key, v, hmap.String())
		}
	}
}

func check_HashMap_Remove(t *testing.T, items []uint) {
	gmap := initGoMap(items)
	hmap := NewMap[testKey, uint](0)
	//
	for key, val := range gmap {
		hmap.Insert(testKey{key}, val)
	}
	// Remove every even key
	for key := range gmap {
		if key%2 == 0 {
			require.True(t, hmap.Remove(testKey{key}))
			require.False(t, hmap.Remove(testKey{key}))
			delete(gmap, key)
		}
	}
	//
	assert.Equal(t, uint(len(gmap)), hmap.Size())
	//
	for _, item := range items {
		_, expected := gmap[item]
		assert.Equal(t, expected, hmap.ContainsKey(testKey{item}), "key %d", item)
	}
}

func initGoMap(items []uint) map[uint]uint {
	gmap := make(map[uint]uint)
	//
	for _, v := range items {
		if w, ok := gmap[v]; ok {
			gmap[v] = w + 1
		} else {
			gmap[v] = 1
		}
	}
	//
	return gmap
}

// A simple wrapper around a uint64.  This is deliberately broken to ensure a
// relatively limited spread of hash values.  This helps to ensure that we get
// some collisions.
type testKey struct {
	value uint
}

// Equals compares two testKeys to check whether they represent the same
// underlying value (or not).
func (p testKey) Equals(other testKey) bool {
	return p.value == other.value
}

// Hash generates a 64-bit hashcode from the underlying value.
func (p testKey) Hash() uint64 {
	// This is a deliberate act to limit the qualitfy of this hash function.
	return uint64(p.value % 16)
}

func (p testKey) String() string {
	return fmt.Sprintf("%d", p.value)
}
