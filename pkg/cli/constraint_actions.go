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
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/uber/peloton-constraints/pkg/common/constraints"
	"github.com/uber/peloton-constraints/pkg/hostmgr/offer"
	"github.com/uber/peloton-constraints/pkg/jobmgr/scaledown"
)

const (
	validateFormatHeader  = "Constraint\tStatus\tError\n"
	validateFormatBody    = "%s\t%s\t%s\n"
	matchFormatHeader     = "Hostname\tResult\tError\n"
	matchFormatBody       = "%s\t%s\t%s\n"
	scaleDownFormatHeader = "Task\tHostname\tGroups\n"
	scaleDownFormatBody   = "%s\t%s\t%s\n"
)

// ErrInvalidConstraints is returned by ValidateAction when some constraint
// of the application is malformed.
var ErrInvalidConstraints = errors.New("application has invalid constraints")

type validateResult struct {
	Constraint string `json:"constraint"`
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
}

type matchResult struct {
	Hostname string `json:"hostname"`
	Result   string `json:"result"`
	Error    string `json:"error,omitempty"`
}

type selectedTask struct {
	ID       string            `json:"id"`
	Hostname string            `json:"hostname"`
	Groups   map[string]string `json:"groups,omitempty"`
}

type scaleDownResult struct {
	Requested int            `json:"requested"`
	Selected  []selectedTask `json:"selected"`
}

// ValidateAction validates the constraints of the application in the
// scenario file.
func (c *Client) ValidateAction(path string) error {
	scenario, err := LoadScenario(path)
	if err != nil {
		return err
	}

	var results []validateResult
	invalid := false
	for _, constraint := range scenario.App.Constraints {
		err := constraints.Validate(constraint)
		invalid = invalid || err != nil
		results = append(results, validateResult{
			Constraint: constraint.String(),
			Valid:      err == nil,
			Error:      errString(err),
		})
	}

	if c.jsonFormat {
		c.printResponseJSON(results)
	} else {
		fmt.Fprint(c.tabWriter, validateFormatHeader)
		for _, r := range results {
			status := "OK"
			if !r.Valid {
				status = "INVALID"
			}
			fmt.Fprintf(c.tabWriter, validateFormatBody, r.Constraint, status, r.Error)
		}
		c.tabWriter.Flush()
	}

	if invalid {
		return errors.Wrapf(ErrInvalidConstraints, "app %s", scenario.App.ID)
	}
	return nil
}

// MatchAction matches every offer of the scenario file against the
// constraints of the application.
func (c *Client) MatchAction(path string) error {
	scenario, err := LoadScenario(path)
	if err != nil {
		return err
	}
	tasks, _ := scenario.TaskRefs()
	offers, _ := scenario.OfferViews()

	filterResults, err := c.matcher.MatchOffers(scenario.Application(), tasks, offers)
	offerErrs := make(map[string]string)
	if merr, ok := err.(*multierror.Error); ok {
		for _, e := range merr.Errors {
			if offerErr, ok := e.(*offer.OfferError); ok {
				offerErrs[offerErr.Hostname] = offerErr.Err.Error()
			}
		}
	}

	results := make([]matchResult, 0, len(offers))
	for i, o := range offers {
		r := matchResult{
			Hostname: o.Hostname,
			Result:   filterResults[i].String(),
		}
		if filterResults[i] == offer.FilterResultInvalidConstraint {
			r.Error = offerErrs[o.Hostname]
		}
		results = append(results, r)
	}

	if c.jsonFormat {
		c.printResponseJSON(results)
		return nil
	}
	fmt.Fprint(c.tabWriter, matchFormatHeader)
	for _, r := range results {
		fmt.Fprintf(c.tabWriter, matchFormatBody, r.Hostname, r.Result, r.Error)
	}
	c.tabWriter.Flush()
	return nil
}

// ScaleDownAction selects count running tasks of the scenario file to kill.
func (c *Client) ScaleDownAction(path string, count int) error {
	scenario, err := LoadScenario(path)
	if err != nil {
		return err
	}
	app := scenario.Application()
	tasks, _ := scenario.TaskRefs()

	selected, err := c.selector.SelectInstancesToKill(app, tasks, count)
	if err != nil {
		return err
	}

	trackers := constraints.Trackers(app, tasks)
	result := scaleDownResult{Requested: count, Selected: []selectedTask{}}
	for _, t := range selected {
		result.Selected = append(result.Selected, selectedTask{
			ID:       t.ID,
			Hostname: t.Hostname,
			Groups:   scaledown.GroupValues(trackers, t),
		})
	}

	if c.jsonFormat {
		c.printResponseJSON(result)
		return nil
	}
	fmt.Fprint(c.tabWriter, scaleDownFormatHeader)
	for _, t := range result.Selected {
		fmt.Fprintf(c.tabWriter, scaleDownFormatBody, t.ID, t.Hostname, formatGroups(t.Groups))
	}
	c.tabWriter.Flush()
	fmt.Fprintf(c.out, "Selected %d of %d requested instances.\n", len(result.Selected), count)
	return nil
}

func formatGroups(groups map[string]string) string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+groups[k])
	}
	return strings.Join(parts, ",")
}
