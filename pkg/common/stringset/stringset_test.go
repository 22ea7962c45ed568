// Copyright (c) 2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stringset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testTask  = "testTask"
	testTask2 = "testTask2"
)

func TestNew(t *testing.T) {
	testSet := New(testTask, testTask2, testTask)
	assert.Equal(t, 2, testSet.Len())
	assert.True(t, testSet.Contains(testTask))
	assert.True(t, testSet.Contains(testTask2))
}

func TestStringSet_Add(t *testing.T) {
	testSet := New()
	testSet.Add(testTask)
	assert.True(t, testSet.Contains(testTask))
	assert.Equal(t, 1, testSet.Len())
}

func TestStringSet_Contains(t *testing.T) {
	var nilSet StringSet
	assert.False(t, nilSet.Contains(testTask))

	testSet := New()
	assert.False(t, testSet.Contains(testTask))
	testSet.Add(testTask)
	assert.True(t, testSet.Contains(testTask))
}

func TestStringSet_Remove(t *testing.T) {
	testSet := New(testTask)
	testSet.Remove(testTask)
	assert.False(t, testSet.Contains(testTask))
	assert.Equal(t, 0, testSet.Len())
}

func TestStringSet_WithLeavesOriginal(t *testing.T) {
	testSet := New(testTask)
	extended := testSet.With(testTask2)

	assert.Equal(t, 1, testSet.Len())
	assert.False(t, testSet.Contains(testTask2))
	assert.Equal(t, []string{testTask, testTask2}, extended.ToSlice())
}

func TestStringSet_CloneOfNil(t *testing.T) {
	var nilSet StringSet
	c := nilSet.Clone()
	c.Add(testTask)
	assert.True(t, c.Contains(testTask))
}

func TestStringSet_ToSlice(t *testing.T) {
	testSet := New("c", "a", "b")
	assert.Equal(t, []string{"a", "b", "c"}, testSet.ToSlice())
}
