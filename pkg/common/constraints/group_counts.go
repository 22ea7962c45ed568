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

package constraints

import "github.com/uber/peloton-constraints/pkg/common"

// GroupCounts tracks how many running tasks present for each grouping key
// of a constraint field. It is the subject of GROUP_BY and MAX_PER
// evaluation.
type GroupCounts map[Key]int

// keyFunc returns the grouping key of a task for one constraint field.
type keyFunc func(t *TaskRef) Key

// taskKeyFunc returns the grouping function of a constraint field: the
// agent hostname for "hostname", otherwise the formatted agent attribute,
// with tasks lacking the attribute grouped under the absent key.
func taskKeyFunc(field string) keyFunc {
	if field == common.HostnameField {
		return func(t *TaskRef) Key {
			return hostnameKey(t.Hostname)
		}
	}
	return func(t *TaskRef) Key {
		if attr, ok := t.GetAttribute(field); ok {
			return attr.Key()
		}
		return _absentKey
	}
}

// CountGroups partitions tasks with the grouping function of the given
// constraint field.
func CountGroups(tasks []*TaskRef, field string) GroupCounts {
	return countGroups(tasks, taskKeyFunc(field))
}

func countGroups(tasks []*TaskRef, fn keyFunc) GroupCounts {
	result := make(GroupCounts)
	for _, t := range tasks {
		result[fn(t)]++
	}
	return result
}

// Min returns the size of the smallest group, or 0 without groups.
func (gc GroupCounts) Min() int {
	first := true
	smallest := 0
	for _, count := range gc {
		if first || count < smallest {
			smallest, first = count, false
		}
	}
	return smallest
}

// CountByValue returns the number of tasks in groups whose visible value
// equals value, whatever the value kind.
func (gc GroupCounts) CountByValue(value string) (int, bool) {
	total, found := 0, false
	for key, count := range gc {
		if key.Present() && key.Value == value {
			total += count
			found = true
		}
	}
	return total, found
}
