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
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/atomic"
)

const (
	// DefaultMaxParallelBatches indicates how many go routines are run at
	// most to perform an action on a batch of items.
	DefaultMaxParallelBatches = 1000
)

type singleTask func(index int) error

// RunInParallel runs task once for each index in [0, count), spreading the
// indexes over at most maxBatches go routines. A non-positive maxBatches
// selects DefaultMaxParallelBatches. A failing index does not stop the
// rest of its batch. All failures are returned as a multierror, ordered by
// index.
func RunInParallel(
	identifier string,
	count int,
	maxBatches int,
	task singleTask) error {

	if maxBatches <= 0 {
		maxBatches = DefaultMaxParallelBatches
	}

	// how many task operations failed due to errors
	tasksNotRun := atomic.NewUint32(0)
	errs := make([]error, count)

	// Each go routine handles at least (count / maxBatches) indexes. In
	// addition if count % maxBatches > 0, the first increment go routines
	// handle one additional index.
	increment := count % maxBatches

	timeStart := time.Now()
	wg := new(sync.WaitGroup)
	prevEnd := 0

	for i := 0; i < maxBatches; i++ {
		updateStart := prevEnd
		updateEnd := updateStart + (count / maxBatches)
		if increment > 0 {
			updateEnd++
			increment--
		}
		if updateEnd > count {
			updateEnd = count
		}
		prevEnd = updateEnd
		if updateStart == updateEnd {
			continue
		}
		wg.Add(1)

		go func() {
			defer wg.Done()
			for k := updateStart; k < updateEnd; k++ {
				if err := task(k); err != nil {
					log.WithError(err).
						WithFields(log.Fields{
							"id":    identifier,
							"index": k,
						}).Debug("parallel task failed")
					errs[k] = err
					tasksNotRun.Inc()
				}
			}
		}()
	}
	wg.Wait()

	failed := tasksNotRun.Load()
	if failed == 0 {
		return nil
	}

	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	log.WithFields(log.Fields{
		"id":        identifier,
		"succeeded": uint32(count) - failed,
		"failed":    failed,
		"duration":  time.Since(timeStart),
	}).Info("parallel task operation had failures")
	return result.ErrorOrNil()
}
