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

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/uber-go/tally"

	"github.com/uber/peloton-constraints/pkg/common/constraints"
	"github.com/uber/peloton-constraints/pkg/hostmgr/offer"
	"github.com/uber/peloton-constraints/pkg/jobmgr/scaledown"
)

// Client runs the constraintctl actions and writes their output.
type Client struct {
	out        io.Writer
	tabWriter  *tabwriter.Writer
	jsonFormat bool

	matcher  *offer.Matcher
	selector *scaledown.Selector
}

// NewClient returns a Client writing to out, as JSON when jsonFormat is set
// and as aligned tables otherwise.
func NewClient(
	out io.Writer,
	jsonFormat bool,
	evaluator constraints.Evaluator,
	maxParallelBatches int,
	scope tally.Scope) *Client {
	return &Client{
		out:        out,
		tabWriter:  tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		jsonFormat: jsonFormat,
		matcher:    offer.NewMatcher(evaluator, maxParallelBatches, scope.SubScope("offer")),
		selector:   scaledown.NewSelector(scope.SubScope("scaledown")),
	}
}

func (c *Client) printResponseJSON(response interface{}) {
	buffer, err := json.MarshalIndent(response, "", "  ")
	if err == nil {
		fmt.Fprintf(c.out, "%v\n", string(buffer))
	} else {
		fmt.Fprintf(c.out, "MarshalIndent err=%v\n", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
