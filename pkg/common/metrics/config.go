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

package metrics

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cactus/go-statsd-client/statsd"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	tallyprom "github.com/uber-go/tally/prometheus"
	tallystatsd "github.com/uber-go/tally/statsd"
)

const (
	// MetricsEndpoint serves prometheus metrics when enabled.
	MetricsEndpoint = "/metrics"
	// HealthEndpoint always answers 200 while the process is up.
	HealthEndpoint = "/health"

	_defaultSeparator = "."
)

// Config is the metrics section of a configuration file.
type Config struct {
	Prometheus *PrometheusConfig `yaml:"prometheus"`
	Statsd     *StatsdConfig     `yaml:"statsd"`

	// FlushInterval is how often counters are reported.
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// PrometheusConfig enables the prometheus reporter.
type PrometheusConfig struct {
	Enable bool `yaml:"enable"`
}

// StatsdConfig enables the statsd reporter.
type StatsdConfig struct {
	Enable   bool   `yaml:"enable"`
	Endpoint string `yaml:"endpoint"`
}

// InitMetricScope creates the root scope with the configured reporter,
// together with a mux exposing the health and metrics endpoints. The
// prometheus reporter takes precedence over statsd. Without any backend
// metrics go to a no-op statsd client.
func InitMetricScope(
	cfg *Config,
	rootMetricScope string) (tally.Scope, io.Closer, *http.ServeMux, error) {

	mux := http.NewServeMux()
	opts := tally.ScopeOptions{
		Prefix:    rootMetricScope,
		Tags:      map[string]string{},
		Separator: _defaultSeparator,
	}

	switch {
	case cfg.Prometheus != nil && cfg.Prometheus.Enable:
		// tally panics if scope name contains "-", hence force convert to "_"
		opts.Prefix = strings.Replace(rootMetricScope, "-", "_", -1)
		opts.Separator = tallyprom.DefaultSeparator
		reporter := tallyprom.NewReporter(tallyprom.Options{})
		opts.CachedReporter = reporter
		log.Infof("Setting up prometheus metrics handler at %s", MetricsEndpoint)
		mux.Handle(MetricsEndpoint, reporter.HTTPHandler())

	case cfg.Statsd != nil && cfg.Statsd.Enable:
		log.Infof("Metrics configured with statsd endpoint %s", cfg.Statsd.Endpoint)
		c, err := statsd.NewClient(cfg.Statsd.Endpoint, "")
		if err != nil {
			return nil, nil, nil, err
		}
		opts.Reporter = tallystatsd.NewReporter(c, tallystatsd.Options{})

	default:
		log.Debug("No metrics backends configured, using the statsd.NoopClient")
		c, _ := statsd.NewNoopClient()
		opts.Reporter = tallystatsd.NewReporter(c, tallystatsd.Options{})
	}

	mux.HandleFunc(HealthEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `\(★ω★)/`)
	})

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = time.Second
	}
	scope, closer := tally.NewRootScope(opts, interval)
	return scope, closer, mux, nil
}
