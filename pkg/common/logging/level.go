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
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/atomic"
)

const (
	// LevelOverwrite is the default endpoint of the level handler.
	LevelOverwrite = "/logging-level"

	_level    = "level"
	_duration = "duration"
	_usage    = "usage: GET `/logging-level[?level=[info|debug]&duration=<duration>]`"
)

// LevelHandler lowers the level of the standard logger to info or debug for
// a while, then restores the initial level. A request without parameters
// reports the current level.
type LevelHandler struct {
	initial atomic.Int32

	mu    sync.Mutex
	timer *time.Timer
}

// NewLevelHandler sets the standard logger to the initial level and
// returns a handler which restores it after every overwrite.
func NewLevelHandler(initial log.Level) *LevelHandler {
	h := &LevelHandler{}
	h.initial.Store(int32(initial))
	log.SetLevel(initial)
	return h
}

func (h *LevelHandler) parse(r *http.Request) (log.Level, time.Duration, error) {
	values := r.URL.Query()
	var missing []string
	for _, name := range []string{_level, _duration} {
		if values.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return 0, 0, errors.Errorf("Required params not set: %s", strings.Join(missing, ","))
	}

	level, err := log.ParseLevel(values.Get(_level))
	if err != nil {
		return 0, 0, err
	}
	if level != log.InfoLevel && level != log.DebugLevel {
		return 0, 0, errors.Errorf("New Level %s is not info or debug", level)
	}
	duration, err := time.ParseDuration(values.Get(_duration))
	if err != nil {
		return 0, 0, err
	}
	return level, duration, nil
}

// ServeHTTP implements http.Handler. A new overwrite replaces the pending
// reset of an earlier one.
func (h *LevelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Query()) == 0 {
		fmt.Fprintf(w, "%s\n", log.GetLevel())
		return
	}

	level, duration, err := h.parse(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, err.Error())
		fmt.Fprintln(w, _usage)
		return
	}

	log.WithFields(log.Fields{
		"new_level": level,
		"duration":  duration,
	}).Info("Setting log level to new level")

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	log.SetLevel(level)
	h.timer = time.AfterFunc(duration, h.reset)

	fmt.Fprintf(w, "Level changed to %s for the next %v.\n", level, duration)
}

func (h *LevelHandler) reset() {
	level := log.Level(h.initial.Load())
	log.WithField("initial_level", level).Info("Resetting log level after timer")
	log.SetLevel(level)
}
