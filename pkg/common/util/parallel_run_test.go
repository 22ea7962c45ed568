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

package util

import (
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"github.com/uber-go/atomic"
	"go.uber.org/goleak"
)

type ParallelRunTestSuite struct {
	suite.Suite
}

func TestParallelRun(t *testing.T) {
	suite.Run(t, new(ParallelRunTestSuite))
}

func (suite *ParallelRunTestSuite) TearDownTest() {
	goleak.VerifyNone(suite.T())
}

// TestRunInParallel tests that an action is taken once on every index.
func (suite *ParallelRunTestSuite) TestRunInParallel() {
	var mu sync.Mutex
	seen := make(map[int]int)
	worker := func(i int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[i]++
		return nil
	}

	err := RunInParallel(uuid.NewRandom().String(), 25, 4, worker)
	suite.NoError(err)
	suite.Len(seen, 25)
	for i := 0; i < 25; i++ {
		suite.Equal(1, seen[i])
	}
}

// TestMoreBatchesThanItems tests that empty batches are skipped.
func (suite *ParallelRunTestSuite) TestMoreBatchesThanItems() {
	calls := atomic.NewInt32(0)
	err := RunInParallel("small", 3, 0, func(int) error {
		calls.Inc()
		return nil
	})
	suite.NoError(err)
	suite.Equal(int32(3), calls.Load())

	suite.NoError(RunInParallel("empty", 0, 8, func(int) error {
		suite.Fail("no index expected")
		return nil
	}))
}

// TestRunInParallelFail tests that every failure is reported in index
// order.
func (suite *ParallelRunTestSuite) TestRunInParallelFail() {
	errOdd := errors.New("odd")
	calls := atomic.NewInt32(0)
	worker := func(i int) error {
		calls.Inc()
		if i%2 == 1 {
			return errors.Wrapf(errOdd, "index %d", i)
		}
		return nil
	}

	err := RunInParallel(uuid.NewRandom().String(), 6, 2, worker)
	suite.Error(err)
	suite.Equal(int32(6), calls.Load())

	merr, ok := err.(*multierror.Error)
	suite.True(ok)
	suite.Len(merr.Errors, 3)
	for i, e := range merr.Errors {
		suite.Equal(errOdd, errors.Cause(e))
		suite.Contains(e.Error(), []string{"index 1", "index 3", "index 5"}[i])
	}
}
