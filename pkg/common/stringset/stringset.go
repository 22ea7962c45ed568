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

import "sort"

// StringSet is a set of strings, used to track task ids. It is not safe for
// concurrent mutation; callers own the sets they build.
type StringSet map[string]struct{}

// New creates a StringSet holding the given keys.
func New(keys ...string) StringSet {
	s := make(StringSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add adds 'key' to the set
func (s StringSet) Add(key string) {
	s[key] = struct{}{}
}

// Contains checks if the set contains 'key'. A nil set contains nothing.
func (s StringSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Remove removes 'key' from the set
func (s StringSet) Remove(key string) {
	delete(s, key)
}

// Len returns the number of keys in the set.
func (s StringSet) Len() int {
	return len(s)
}

// Clone returns a copy of the set.
func (s StringSet) Clone() StringSet {
	c := make(StringSet, len(s)+1)
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// With returns a copy of the set with 'key' added, leaving s untouched.
func (s StringSet) With(key string) StringSet {
	c := s.Clone()
	c.Add(key)
	return c
}

// ToSlice returns the keys of the set in sorted order.
func (s StringSet) ToSlice() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
