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
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/uber/peloton-constraints/pkg/cli"
	"github.com/uber/peloton-constraints/pkg/common"
	"github.com/uber/peloton-constraints/pkg/common/config"
	"github.com/uber/peloton-constraints/pkg/common/constraints"
	"github.com/uber/peloton-constraints/pkg/common/logging"
	"github.com/uber/peloton-constraints/pkg/common/metrics"
)

var (
	// Version of constraintctl, set by the Makefile
	version string

	app = kingpin.New(common.ConstraintsCLI, "CLI for evaluating placement constraints")

	debug = app.Flag(
		"debug", "enable debug logging").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	enableSentry = app.Flag(
		"enable-sentry", "enable logging hook up to sentry").
		Default("false").
		Envar("ENABLE_SENTRY_LOGGING").
		Bool()

	jsonFormat = app.Flag(
		"json",
		"print full json responses").
		Short('j').
		Default("false").
		Bool()

	cfgFiles = app.Flag(
		"config",
		"YAML config files (can be provided multiple times to merge configs)").
		Short('c').
		Envar("CONSTRAINTS_CONFIG").
		ExistingFiles()

	metricsListen = app.Flag(
		"metrics-listen",
		"address serving /metrics, /health and /logging-level while running "+
			"(set $METRICS_LISTEN to override)").
		Envar("METRICS_LISTEN").
		String()

	regexpCacheSize = app.Flag(
		"regexp-cache-size",
		"compiled patterns kept (constraints.regexp_cache_size override)").
		Envar("REGEXP_CACHE_SIZE").
		Int()

	validate         = app.Command("validate", "validate the constraints of an application")
	validateScenario = validate.Arg("scenario", "scenario YAML file").Required().ExistingFile()

	match         = app.Command("match", "match offers against the constraints of an application")
	matchScenario = match.Arg("scenario", "scenario YAML file").Required().ExistingFile()

	scaleDown         = app.Command("scale-down", "select running instances to kill")
	scaleDownScenario = scaleDown.Arg("scenario", "scenario YAML file").Required().ExistingFile()
	scaleDownCount    = scaleDown.Flag("count", "number of instances to kill").
				Short('n').
				Required().
				Int()
)

func loadConfig() Config {
	var cfg Config
	if len(*cfgFiles) > 0 {
		if err := config.Parse(&cfg, *cfgFiles...); err != nil {
			log.WithError(err).Fatal("Cannot parse yaml config")
		}
	}
	if *regexpCacheSize > 0 {
		cfg.Constraints.RegexpCacheSize = *regexpCacheSize
	}
	if *enableSentry {
		cfg.Sentry.Enabled = true
	}
	return cfg
}

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetOutput(os.Stderr)
	cfg := loadConfig()
	if err := logging.Configure(&cfg.Logging, *debug); err != nil {
		log.WithError(err).Fatal("Cannot configure logging")
	}
	logging.ConfigureSentry(&cfg.Sentry)

	rootScope, scopeCloser, mux, err := metrics.InitMetricScope(
		&cfg.Metrics, common.MetricsRootScope)
	if err != nil {
		log.WithError(err).Fatal("Cannot initialize metrics")
	}
	defer scopeCloser.Close()

	if *metricsListen != "" {
		mux.Handle(logging.LevelOverwrite, logging.NewLevelHandler(log.GetLevel()))
		go func() {
			log.WithField("address", *metricsListen).Info("Serving metrics")
			if err := http.ListenAndServe(*metricsListen, mux); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	client := cli.NewClient(
		os.Stdout,
		*jsonFormat,
		constraints.NewEvaluator(cfg.Constraints.RegexpCacheSize),
		cfg.Constraints.MaxParallelBatches,
		rootScope,
	)

	switch cmd {
	case validate.FullCommand():
		err = client.ValidateAction(*validateScenario)
	case match.FullCommand():
		err = client.MatchAction(*matchScenario)
	case scaleDown.FullCommand():
		err = client.ScaleDownAction(*scaleDownScenario, *scaleDownCount)
	default:
		app.Fatalf("Unknown command %s", cmd)
	}
	app.FatalIfError(err, "")
}
