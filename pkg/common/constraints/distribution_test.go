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
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/uber/peloton-constraints/pkg/common/stringset"
)

type DistributionTrackerTestSuite struct {
	suite.Suite
}

func TestDistributionTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(DistributionTrackerTestSuite))
}

func ids(tasks []*TaskRef) []string {
	var result []string
	for _, t := range tasks {
		result = append(result, t.ID)
	}
	return result
}

func collect(d *DistributionTracker, excluding stringset.StringSet) []string {
	var result []string
	for t := range d.CandidatesToEvict(excluding) {
		result = append(result, t.ID)
	}
	return result
}

func (suite *DistributionTrackerTestSuite) TestDifference() {
	h1 := newTasks(3, _testHost1)
	h2 := newTasks(1, _testHost2)
	d := NewDistributionTracker(
		hostnameConstraint(OperatorGroupBy, ""), concat(h1, h2))

	suite.Equal(2, d.DistributionDifference(nil))
	suite.Equal(1, d.DistributionDifference(stringset.New(h1[0].ID)))
	suite.Equal(3, d.DistributionDifference(stringset.New(h2[0].ID)))
	suite.Equal(map[Key]int{
		hostnameKey(_testHost1): 3,
		hostnameKey(_testHost2): 0,
	}, d.Sizes(stringset.New(h2[0].ID)))
}

func (suite *DistributionTrackerTestSuite) TestNoTasks() {
	d := NewDistributionTracker(hostnameConstraint(OperatorGroupBy, ""), nil)
	suite.Equal(0, d.DistributionDifference(nil))
	suite.True(d.IsMoreEvenWithout(nil))
	suite.Empty(collect(d, nil))
}

func (suite *DistributionTrackerTestSuite) TestIsMoreEvenWithout() {
	h1 := newTasks(4, _testHost1)
	h2 := newTasks(1, _testHost2)
	d := NewDistributionTracker(
		hostnameConstraint(OperatorGroupBy, ""), concat(h1, h2))

	// 4:1 -> 3:1 is an improvement.
	suite.True(d.IsMoreEvenWithout(stringset.New(h1[0].ID)))
	// 4:1 -> 4:0 is not.
	suite.False(d.IsMoreEvenWithout(stringset.New(h2[0].ID)))
	// 4:1 -> 2:1 is balanced within one task.
	suite.True(d.IsMoreEvenWithout(stringset.New(h1[0].ID, h1[1].ID)))
	// 4:1 -> 3:0 keeps the same spread.
	suite.False(d.IsMoreEvenWithout(stringset.New(h1[0].ID, h2[0].ID)))
}

func (suite *DistributionTrackerTestSuite) TestCandidatesFromLargestGroup() {
	h1 := newTasks(3, _testHost1)
	h2 := newTasks(1, _testHost2)
	d := NewDistributionTracker(
		hostnameConstraint(OperatorGroupBy, ""), concat(h2, h1))

	suite.Equal(ids(h1), collect(d, nil))
	suite.Equal(ids(h1[1:]), collect(d, stringset.New(h1[0].ID)))
}

func (suite *DistributionTrackerTestSuite) TestCandidatesFromTiedGroups() {
	h1 := newTasks(2, _testHost1)
	h2 := newTasks(2, _testHost2)
	h3 := newTasks(1, _testHost3)
	d := NewDistributionTracker(
		hostnameConstraint(OperatorGroupBy, ""), concat(h3, h2, h1))

	suite.Equal(ids(concat(h1, h2)), collect(d, nil))
}

func (suite *DistributionTrackerTestSuite) TestNoCandidatesWhenEven() {
	tasks := concat(newTasks(2, _testHost1), newTasks(2, _testHost2))
	d := NewDistributionTracker(hostnameConstraint(OperatorGroupBy, ""), tasks)
	suite.Empty(collect(d, nil))
	suite.Equal(0, d.DistributionDifference(nil))
}

func (suite *DistributionTrackerTestSuite) TestCandidatesStopEarly() {
	h1 := newTasks(3, _testHost1)
	d := NewDistributionTracker(
		hostnameConstraint(OperatorGroupBy, ""),
		concat(h1, newTasks(1, _testHost2)))

	var first []string
	for t := range d.CandidatesToEvict(nil) {
		first = append(first, t.ID)
		break
	}
	suite.Equal([]string{h1[0].ID}, first)
}

func (suite *DistributionTrackerTestSuite) TestAbsentAttributeGroup() {
	withRack := newTasks(1, _testHost1, rack("r1"))
	without := newTasks(3, _testHost2)
	c := rackConstraint(OperatorGroupBy, "")
	d := NewDistributionTracker(c, concat(withRack, without))

	suite.Equal(c, d.Constraint())
	suite.Equal(2, d.DistributionDifference(nil))
	suite.Equal(ids(without), collect(d, nil))
}
