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
	"github.com/pkg/errors"

	"github.com/uber/peloton-constraints/pkg/common"
)

// Evaluator decides whether an offer satisfies a placement constraint given
// the tasks of the application which are already running.
type Evaluator interface {
	// Matches returns true if placing one more task on the offer satisfies
	// the constraint. An error is returned for constraints which cannot be
	// evaluated, such as a MAX_PER constraint with a non-numeric value.
	Matches(tasks []*TaskRef, offer *Offer, constraint *Constraint) (bool, error)
}

// evaluator implements Evaluator. It keeps no state besides a cache of
// compiled patterns, so one instance can be shared by many goroutines.
type evaluator struct {
	regexps *regexpCache
}

// NewEvaluator returns an Evaluator which keeps up to regexpCacheSize
// compiled patterns. A non-positive size selects DefaultRegexpCacheSize.
func NewEvaluator(regexpCacheSize int) Evaluator {
	return &evaluator{regexps: newRegexpCache(regexpCacheSize)}
}

var _defaultEvaluator = NewEvaluator(DefaultRegexpCacheSize)

// Matches evaluates the constraint with a shared default Evaluator.
func Matches(tasks []*TaskRef, offer *Offer, constraint *Constraint) (bool, error) {
	return _defaultEvaluator.Matches(tasks, offer, constraint)
}

// Matches implements Evaluator.
func (e *evaluator) Matches(
	tasks []*TaskRef,
	offer *Offer,
	constraint *Constraint) (bool, error) {

	if constraint.Field == common.HostnameField {
		return e.matchHostname(tasks, offer.Hostname, constraint)
	}

	attr, ok := offer.GetAttribute(constraint.Field)
	if !ok {
		// An offer without the attribute can only be said not to match.
		return constraint.Operator == OperatorUnlike, nil
	}
	return e.matchAttribute(tasks, offer, attr, constraint)
}

func (e *evaluator) matchHostname(
	tasks []*TaskRef,
	hostname string,
	constraint *Constraint) (bool, error) {

	value := constraint.Value
	switch constraint.Operator {
	case OperatorLike:
		return e.regexps.matches(value, hostname)

	case OperatorUnlike:
		matched, err := e.regexps.matches(value, hostname)
		return !matched && err == nil, err

	case OperatorUnique:
		for _, t := range tasks {
			if t.Hostname == hostname {
				return false, nil
			}
		}
		return true, nil

	case OperatorCluster:
		if value != "" && value != hostname {
			return false, nil
		}
		for _, t := range tasks {
			if t.Hostname != hostname {
				return false, nil
			}
		}
		return true, nil

	case OperatorGroupBy:
		groups := CountGroups(tasks, common.HostnameField)
		return checkGroupBy(value, hostnameKey(hostname), groups), nil

	case OperatorMaxPer:
		groups := CountGroups(tasks, common.HostnameField)
		return checkMaxPer(value, hostname, groups)
	}
	return false, errors.Wrapf(ErrUnknownOperator, "%s", constraint)
}

func (e *evaluator) matchAttribute(
	tasks []*TaskRef,
	offer *Offer,
	attr *Attribute,
	constraint *Constraint) (bool, error) {

	value := constraint.Value
	offerKey := attr.Key()
	switch constraint.Operator {
	case OperatorLike:
		if value == "" {
			return false, nil
		}
		return e.regexps.matches(value, offerKey.Value)

	case OperatorUnlike:
		if value == "" {
			return false, nil
		}
		matched, err := e.regexps.matches(value, offerKey.Value)
		return !matched && err == nil, err

	case OperatorUnique:
		for _, t := range tasks {
			if taskAttr, ok := t.GetAttribute(constraint.Field); ok &&
				taskAttr.Key() == offerKey {
				return false, nil
			}
		}
		return true, nil

	case OperatorCluster:
		if value != "" && value != offerKey.Value {
			return false, nil
		}
		for _, t := range tasks {
			taskAttr, ok := t.GetAttribute(constraint.Field)
			if !ok || taskAttr.Key() != offerKey {
				return false, nil
			}
		}
		return true, nil

	case OperatorGroupBy:
		groups := CountGroups(tasks, constraint.Field)
		return checkGroupBy(value, offerKey, groups), nil

	case OperatorMaxPer:
		// Tasks are grouped by attribute value but the group looked up is
		// the offer hostname, not the offer attribute value.
		groups := CountGroups(tasks, constraint.Field)
		return checkMaxPer(value, offer.Hostname, groups)
	}
	return false, errors.Wrapf(ErrUnknownOperator, "%s", constraint)
}

// checkGroupBy admits a value which no running task has yet. Once at least
// the requested minimum number of groups exists, a known value is only
// admitted if its group is one of the smallest.
func checkGroupBy(value string, offerKey Key, groups GroupCounts) bool {
	count, ok := groups[offerKey]
	if !ok {
		return true
	}
	return len(groups) >= parseGroupByMinimum(value) && count == groups.Min()
}

// checkMaxPer admits the offer while fewer than value tasks share its
// grouping value.
func checkMaxPer(value, offerValue string, groups GroupCounts) (bool, error) {
	limit, err := parseMaxPer(value)
	if err != nil {
		return false, err
	}
	count, ok := groups.CountByValue(offerValue)
	return !ok || count < limit, nil
}
