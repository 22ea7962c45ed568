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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetricScopeNoop(t *testing.T) {
	scope, closer, mux, err := InitMetricScope(&Config{}, "constraints-test")
	require.NoError(t, err)
	defer closer.Close()

	scope.Counter("requests").Inc(1)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", HealthEndpoint, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", MetricsEndpoint, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInitMetricScopePrometheus(t *testing.T) {
	scope, closer, mux, err := InitMetricScope(&Config{
		Prometheus: &PrometheusConfig{Enable: true},
	}, "constraints-test")
	require.NoError(t, err)

	scope.Counter("requests").Inc(1)
	require.NoError(t, closer.Close())

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", MetricsEndpoint, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "constraints_test_requests")
}

func TestInitMetricScopeStatsd(t *testing.T) {
	scope, closer, _, err := InitMetricScope(&Config{
		Statsd: &StatsdConfig{Enable: true, Endpoint: "127.0.0.1:8125"},
	}, "constraints")
	require.NoError(t, err)
	defer closer.Close()
	scope.Gauge("up").Update(1)
}
