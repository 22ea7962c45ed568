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
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	"golang.org/x/time/rate"

	"github.com/uber/peloton-constraints/pkg/common"
	"github.com/uber/peloton-constraints/pkg/common/constraints"
	"github.com/uber/peloton-constraints/pkg/common/util"
)

// FilterResult is the outcome of matching one offer against the placement
// constraints of an application.
type FilterResult int

const (
	// FilterResultMatch means the offer satisfies every constraint.
	FilterResultMatch FilterResult = iota
	// FilterResultMismatchConstraints means some constraint rejects the offer.
	FilterResultMismatchConstraints
	// FilterResultInvalidConstraint means some constraint could not be
	// evaluated.
	FilterResultInvalidConstraint
)

var _filterResultNames = map[FilterResult]string{
	FilterResultMatch:               "MATCH",
	FilterResultMismatchConstraints: "MISMATCH_CONSTRAINTS",
	FilterResultInvalidConstraint:   "INVALID_CONSTRAINT",
}

func (r FilterResult) String() string {
	if name, ok := _filterResultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("FilterResult(%d)", int(r))
}

// OfferError is the evaluation failure of one offer of a batch.
type OfferError struct {
	Hostname string
	Err      error
}

func (e *OfferError) Error() string {
	return fmt.Sprintf("offer on %s: %v", e.Hostname, e.Err)
}

// Cause returns the evaluation error.
func (e *OfferError) Cause() error {
	return e.Err
}

// Matcher checks resource offers against the placement constraints of an
// application given its running tasks.
type Matcher struct {
	// evaluator is evaluator for the constraints
	evaluator constraints.Evaluator
	// maxParallelBatches bounds the go routines used by MatchOffers
	maxParallelBatches int
	// warnLimiter throttles the empty pattern warning, which fires for
	// every offer of a misconfigured application
	warnLimiter *rate.Limiter

	metrics *Metrics
}

// _emptyPatternWarnInterval is the minimum time between two empty pattern
// warnings of one Matcher.
const _emptyPatternWarnInterval = time.Minute

// NewMatcher returns a new instance of Matcher.
func NewMatcher(
	evaluator constraints.Evaluator,
	maxParallelBatches int,
	scope tally.Scope) *Matcher {
	return &Matcher{
		evaluator:          evaluator,
		maxParallelBatches: maxParallelBatches,
		warnLimiter:        rate.NewLimiter(rate.Every(_emptyPatternWarnInterval), 1),
		metrics:            NewMetrics(scope),
	}
}

// MatchOffer evaluates every constraint of the application against the
// offer and stops at the first one which rejects it. The evaluation error is
// returned with FilterResultInvalidConstraint.
func (m *Matcher) MatchOffer(
	app constraints.Application,
	tasks []*constraints.TaskRef,
	offer *constraints.Offer) (FilterResult, error) {

	result, err := m.matchOffer(app, tasks, offer)
	m.metrics.record(result)
	return result, err
}

func (m *Matcher) matchOffer(
	app constraints.Application,
	tasks []*constraints.TaskRef,
	offer *constraints.Offer) (FilterResult, error) {

	for _, c := range app.GetConstraints() {
		if c == nil {
			continue
		}
		m.warnEmptyPattern(offer, c)
		m.metrics.operatorCounter(c.Operator).Inc(1)

		ok, err := m.evaluator.Matches(tasks, offer, c)
		if err != nil {
			log.WithError(err).
				WithFields(log.Fields{
					common.HostnameField: offer.Hostname,
					"constraint":         c.String(),
				}).Error("Error when evaluating input constraint")
			return FilterResultInvalidConstraint,
				errors.Wrapf(err, "failed to evaluate %s", c)
		}
		if !ok {
			log.WithFields(log.Fields{
				common.HostnameField: offer.Hostname,
				"constraint":         c.String(),
			}).Debug("Offer does not match constraint")
			return FilterResultMismatchConstraints, nil
		}
	}

	log.WithField(common.HostnameField, offer.Hostname).
		Debug("Offer matches all constraints")
	return FilterResultMatch, nil
}

// warnEmptyPattern logs LIKE and UNLIKE constraints without a pattern on an
// attribute carried by the offer. They never match.
func (m *Matcher) warnEmptyPattern(
	offer *constraints.Offer,
	c *constraints.Constraint) {

	if c.Value != "" || c.Field == common.HostnameField {
		return
	}
	if c.Operator != constraints.OperatorLike &&
		c.Operator != constraints.OperatorUnlike {
		return
	}
	if _, ok := offer.GetAttribute(c.Field); !ok {
		return
	}
	m.metrics.emptyPattern.Inc(1)
	if !m.warnLimiter.Allow() {
		return
	}
	log.WithFields(log.Fields{
		common.HostnameField: offer.Hostname,
		"constraint":         c.String(),
	}).Warnf("Error, value is required for %s operation", c.Operator)
}

// MatchOffers matches a batch of offers in parallel. Results are in offer
// order. Evaluation errors of all offers are returned together.
func (m *Matcher) MatchOffers(
	app constraints.Application,
	tasks []*constraints.TaskRef,
	offers []*constraints.Offer) ([]FilterResult, error) {

	results := make([]FilterResult, len(offers))
	err := util.RunInParallel(
		fmt.Sprintf("match %d offers", len(offers)),
		len(offers),
		m.maxParallelBatches,
		func(i int) error {
			result, err := m.MatchOffer(app, tasks, offers[i])
			results[i] = result
			if err != nil {
				return &OfferError{Hostname: offers[i].Hostname, Err: err}
			}
			return nil
		})
	return results, err
}
