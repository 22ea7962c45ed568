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

	"github.com/pkg/errors"

	"github.com/uber/peloton-constraints/pkg/common/sorter"
	"github.com/uber/peloton-constraints/pkg/common/stringset"
)

// rankedTracker is a tracker with the spread it had at the start of one
// selection round.
type rankedTracker struct {
	tracker    *DistributionTracker
	difference int
	index      int
}

func byDifferenceDesc(p1, p2 rankedTracker) bool { return p1.difference > p2.difference }
func byDeclaration(p1, p2 rankedTracker) bool    { return p1.index < p2.index }

// Trackers returns one DistributionTracker per GROUP_BY constraint of the
// application, in declaration order.
func Trackers(app Application, tasks []*TaskRef) []*DistributionTracker {
	if app == nil {
		return nil
	}
	var trackers []*DistributionTracker
	for _, c := range app.GetConstraints() {
		if c == nil || c.Operator != OperatorGroupBy {
			continue
		}
		trackers = append(trackers, NewDistributionTracker(c, tasks))
	}
	return trackers
}

// SelectForRemoval picks count running tasks to remove when scaling the
// application down so that no GROUP_BY distribution of the application
// gets worse than tolerated.
//
// Tasks are picked greedily one at a time. The result holds fewer than
// count tasks when no remaining task can be removed without unbalancing
// some distribution, and is empty when the application declares no
// GROUP_BY constraint. Callers must handle a short result.
func SelectForRemoval(
	app Application,
	tasks []*TaskRef,
	count int) ([]*TaskRef, error) {

	if count < 0 || count > len(tasks) {
		return nil, errors.Wrapf(ErrInvalidRemovalCount,
			"asked for %d of %d running tasks", count, len(tasks))
	}

	if count == len(tasks) {
		all := make([]*TaskRef, len(tasks))
		copy(all, tasks)
		return all, nil
	}

	trackers := Trackers(app, tasks)
	if len(trackers) == 0 {
		return nil, nil
	}

	selected := stringset.New()
	var result []*TaskRef
	for len(result) < count {
		next, ok := nextForRemoval(trackers, tasks, selected)
		if !ok {
			break
		}
		selected.Add(next.ID)
		result = append(result, next)
	}
	return result, nil
}

// nextForRemoval returns the first candidate whose removal, on top of the
// tasks already selected, keeps every distribution acceptable.
func nextForRemoval(
	trackers []*DistributionTracker,
	tasks []*TaskRef,
	selected stringset.StringSet) (*TaskRef, bool) {

	for candidate := range candidates(trackers, tasks, selected) {
		without := selected.With(candidate.ID)
		acceptable := true
		for _, t := range trackers {
			if !t.IsMoreEvenWithout(without) {
				acceptable = false
				break
			}
		}
		if acceptable {
			return candidate, true
		}
	}
	return nil, false
}

// candidates yields the eviction candidates of the most unbalanced
// distributions first, followed by every task not selected yet.
func candidates(
	trackers []*DistributionTracker,
	tasks []*TaskRef,
	selected stringset.StringSet) iter.Seq[*TaskRef] {

	ranked := make([]rankedTracker, 0, len(trackers))
	for i, t := range trackers {
		ranked = append(ranked, rankedTracker{
			tracker:    t,
			difference: t.DistributionDifference(selected),
			index:      i,
		})
	}
	sorter.OrderedBy[rankedTracker](byDifferenceDesc, byDeclaration).Sort(ranked)

	return func(yield func(*TaskRef) bool) {
		for _, r := range ranked {
			for t := range r.tracker.CandidatesToEvict(selected) {
				if !yield(t) {
					return
				}
			}
		}
		for _, t := range tasks {
			if selected.Contains(t.ID) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}
