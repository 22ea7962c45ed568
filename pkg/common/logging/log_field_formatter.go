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

package logging

import (
	log "github.com/sirupsen/logrus"
)

// LogFieldFormatter adds a fixed set of fields to every entry before
// handing it to the wrapped formatter.
type LogFieldFormatter struct {
	Fields    log.Fields
	Formatter log.Formatter
}

// Format implements log.Formatter.
func (f LogFieldFormatter) Format(entry *log.Entry) ([]byte, error) {
	data := make(log.Fields, len(entry.Data)+len(f.Fields))
	for k, v := range f.Fields {
		data[k] = v
	}
	for k, v := range entry.Data {
		data[k] = v
	}
	entry.Data = data
	return f.Formatter.Format(entry)
}

// Config is the logging section of a configuration file.
type Config struct {
	// Level is a logrus level name, info when empty.
	Level string `yaml:"level"`

	// Format is either "json" or "text", json when empty.
	Format string `yaml:"format"`

	// Fields are added to every log entry.
	Fields map[string]string `yaml:"fields"`
}

// Configure sets up the standard logger from the config. An explicit
// debug flag overrides the configured level.
func Configure(cfg *Config, debug bool) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = log.ParseLevel(cfg.Level); err != nil {
			return err
		}
	}
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	var formatter log.Formatter = &log.JSONFormatter{}
	if cfg.Format == "text" {
		formatter = &log.TextFormatter{DisableTimestamp: true}
	}
	if len(cfg.Fields) > 0 {
		fields := make(log.Fields, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields[k] = v
		}
		formatter = LogFieldFormatter{Fields: fields, Formatter: formatter}
	}
	log.SetFormatter(formatter)
	return nil
}
