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

// Package scaledown picks the running instances of an application to kill
// when its instance count is lowered.
package scaledown

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/uber/peloton-constraints/pkg/common"
	"github.com/uber/peloton-constraints/pkg/common/constraints"
)

// Selector chooses instances to kill so that the GROUP_BY spread of the
// application is preserved.
type Selector struct {
	metrics *Metrics
}

// NewSelector returns a Selector reporting to the given scope.
func NewSelector(scope tally.Scope) *Selector {
	return &Selector{metrics: NewMetrics(scope)}
}

// SelectInstancesToKill returns up to count running tasks to kill. The
// result is shorter than count when the remaining tasks cannot be removed
// without unbalancing the application; callers kill what is returned and
// retry later.
func (s *Selector) SelectInstancesToKill(
	app constraints.Application,
	tasks []*constraints.TaskRef,
	count int) ([]*constraints.TaskRef, error) {

	s.metrics.requests.Inc(1)
	defer s.metrics.latency.Start().Stop()

	start := time.Now()
	selected, err := constraints.SelectForRemoval(app, tasks, count)
	if err != nil {
		s.metrics.invalid.Inc(1)
		log.WithError(err).
			WithFields(log.Fields{
				"running":   len(tasks),
				"requested": count,
			}).Error("failed to select instances to kill")
		return nil, err
	}
	s.metrics.selected.Inc(int64(len(selected)))

	trackers := constraints.Trackers(app, tasks)
	for _, t := range selected {
		log.WithFields(log.Fields{
			"task_id":            t.ID,
			common.HostnameField: t.Hostname,
			"groups":             GroupValues(trackers, t),
		}).Info("selected instance to kill")
	}

	if len(selected) < count {
		s.metrics.short.Inc(1)
		log.WithFields(log.Fields{
			"running":   len(tasks),
			"requested": count,
			"selected":  len(selected),
			"duration":  time.Since(start),
		}).Warn("could not select enough instances to kill without unbalancing")
	}
	return selected, nil
}

// GroupValues returns the grouping value the task has for each GROUP_BY
// constraint, keyed by constraint field.
func GroupValues(
	trackers []*constraints.DistributionTracker,
	t *constraints.TaskRef) map[string]string {

	values := make(map[string]string, len(trackers))
	for _, d := range trackers {
		field := d.Constraint().Field
		if field == common.HostnameField {
			values[field] = t.Hostname
			continue
		}
		if attr, ok := t.GetAttribute(field); ok {
			values[field] = attr.Format()
		}
	}
	return values
}
