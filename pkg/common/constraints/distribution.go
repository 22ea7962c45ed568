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

import (
	"iter"
	"sort"

	"github.com/uber/peloton-constraints/pkg/common/stringset"
)

// taskGroup is the set of tasks sharing one grouping key, in input order.
type taskGroup struct {
	key   Key
	tasks []*TaskRef
}

// sizeWithout returns the number of tasks in the group not in excluding.
func (g *taskGroup) sizeWithout(excluding stringset.StringSet) int {
	size := 0
	for _, t := range g.tasks {
		if !excluding.Contains(t.ID) {
			size++
		}
	}
	return size
}

// DistributionTracker partitions the running tasks of an application by
// the grouping key of one GROUP_BY constraint and measures how evenly the
// tasks are spread once some of them are taken away.
type DistributionTracker struct {
	constraint *Constraint
	groups     []*taskGroup
}

// NewDistributionTracker groups tasks by the field of the constraint.
// Groups are ordered by key and tasks keep their input order.
func NewDistributionTracker(
	constraint *Constraint,
	tasks []*TaskRef) *DistributionTracker {

	keyOf := taskKeyFunc(constraint.Field)
	byKey := make(map[Key]*taskGroup)
	var groups []*taskGroup
	for _, t := range tasks {
		key := keyOf(t)
		g, ok := byKey[key]
		if !ok {
			g = &taskGroup{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.tasks = append(g.tasks, t)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].key.less(groups[j].key)
	})

	return &DistributionTracker{
		constraint: constraint,
		groups:     groups,
	}
}

// Constraint returns the GROUP_BY constraint being tracked.
func (d *DistributionTracker) Constraint() *Constraint {
	return d.constraint
}

// Sizes returns the group sizes by key once excluding is taken away.
// Emptied groups are kept with a size of zero.
func (d *DistributionTracker) Sizes(excluding stringset.StringSet) map[Key]int {
	sizes := make(map[Key]int, len(d.groups))
	for _, g := range d.groups {
		sizes[g.key] = g.sizeWithout(excluding)
	}
	return sizes
}

// DistributionDifference returns the difference between the largest and
// the smallest group once the excluded tasks are taken away.
func (d *DistributionTracker) DistributionDifference(
	excluding stringset.StringSet) int {

	if len(d.groups) == 0 {
		return 0
	}
	largest, smallest := d.extremes(excluding)
	return largest - smallest
}

// IsMoreEvenWithout returns true if taking away excluding leaves the
// groups balanced within one task, or strictly more balanced than they
// are with every task in place.
func (d *DistributionTracker) IsMoreEvenWithout(
	excluding stringset.StringSet) bool {

	after := d.DistributionDifference(excluding)
	return after <= 1 || d.DistributionDifference(nil) > after
}

// CandidatesToEvict yields the remaining tasks of the largest groups once
// excluding is taken away. Nothing is yielded when every group has the
// same size.
func (d *DistributionTracker) CandidatesToEvict(
	excluding stringset.StringSet) iter.Seq[*TaskRef] {

	return func(yield func(*TaskRef) bool) {
		if len(d.groups) == 0 {
			return
		}
		largest, smallest := d.extremes(excluding)
		if largest == smallest {
			return
		}
		for _, g := range d.groups {
			if g.sizeWithout(excluding) != largest {
				continue
			}
			for _, t := range g.tasks {
				if excluding.Contains(t.ID) {
					continue
				}
				if !yield(t) {
					return
				}
			}
		}
	}
}

func (d *DistributionTracker) extremes(
	excluding stringset.StringSet) (largest, smallest int) {

	for i, g := range d.groups {
		size := g.sizeWithout(excluding)
		if i == 0 || size > largest {
			largest = size
		}
		if i == 0 || size < smallest {
			smallest = size
		}
	}
	return largest, smallest
}
