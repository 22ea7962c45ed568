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

package offer

import (
	"github.com/uber-go/tally"

	"github.com/uber/peloton-constraints/pkg/common/constraints"
)

// Metrics tracks the outcome of matching offers against placement
// constraints.
type Metrics struct {
	offersMatched    tally.Counter
	offersMismatched tally.Counter
	offersInvalid    tally.Counter
	emptyPattern     tally.Counter

	scope tally.Scope
}

// NewMetrics returns a new Metrics struct, with all metrics initialized
// and rooted at the given tally.Scope
func NewMetrics(scope tally.Scope) *Metrics {
	return &Metrics{
		offersMatched:    scope.Counter("offers_matched"),
		offersMismatched: scope.Counter("offers_mismatched"),
		offersInvalid:    scope.Counter("offers_invalid"),
		emptyPattern:     scope.Counter("constraint_empty_pattern"),

		scope: scope,
	}
}

func (m *Metrics) record(result FilterResult) {
	switch result {
	case FilterResultMatch:
		m.offersMatched.Inc(1)
	case FilterResultMismatchConstraints:
		m.offersMismatched.Inc(1)
	case FilterResultInvalidConstraint:
		m.offersInvalid.Inc(1)
	}
}

// operatorCounter counts evaluations per operator.
func (m *Metrics) operatorCounter(op constraints.Operator) tally.Counter {
	return m.scope.Tagged(map[string]string{
		"operator": op.String(),
	}).Counter("constraint_evaluations")
}
