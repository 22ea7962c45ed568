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

package main

import (
	"github.com/uber/peloton-constraints/pkg/common/logging"
	"github.com/uber/peloton-constraints/pkg/common/metrics"
)

// Config is the constraintctl configuration.
type Config struct {
	Logging     logging.Config       `yaml:"logging"`
	Sentry      logging.SentryConfig `yaml:"sentry"`
	Metrics     metrics.Config       `yaml:"metrics"`
	Constraints ConstraintsConfig    `yaml:"constraints"`
}

// ConstraintsConfig tunes the constraint engine.
type ConstraintsConfig struct {
	// RegexpCacheSize is the number of compiled LIKE/UNLIKE patterns kept.
	RegexpCacheSize int `yaml:"regexp_cache_size" validate:"min=0"`

	// MaxParallelBatches bounds the go routines matching a batch of offers.
	MaxParallelBatches int `yaml:"max_parallel_batches" validate:"min=0"`
}
