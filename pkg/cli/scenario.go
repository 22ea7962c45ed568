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
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"github.com/uber/peloton-constraints/pkg/common/config"
	"github.com/uber/peloton-constraints/pkg/common/constraints"
)

// Scenario is an application, its running tasks and a batch of offers,
// as read from a YAML file.
type Scenario struct {
	App    AppSpec     `yaml:"app"`
	Tasks  []TaskSpec  `yaml:"tasks"`
	Offers []OfferSpec `yaml:"offers"`
}

// AppSpec declares the application and its placement constraints.
type AppSpec struct {
	ID          string                    `yaml:"id" validate:"nonzero"`
	Constraints []*constraints.Constraint `yaml:"constraints"`
}

// TaskSpec is one running task.
type TaskSpec struct {
	ID         string          `yaml:"id" validate:"nonzero"`
	Hostname   string          `yaml:"hostname" validate:"nonzero"`
	Attributes []AttributeSpec `yaml:"attributes"`
}

// OfferSpec is one resource offer.
type OfferSpec struct {
	Hostname   string          `yaml:"hostname" validate:"nonzero"`
	Attributes []AttributeSpec `yaml:"attributes"`
}

// AttributeSpec is an agent attribute. Exactly one of the value fields is
// set.
type AttributeSpec struct {
	Name   string              `yaml:"name" validate:"nonzero"`
	Scalar *float64            `yaml:"scalar"`
	Text   *string             `yaml:"text"`
	Ranges []constraints.Range `yaml:"ranges"`
	Set    []string            `yaml:"set"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, errors.Wrapf(err, "failed to parse scenario %s", path)
	}
	if err := config.Validate(&s); err != nil {
		return nil, errors.Wrapf(err, "invalid scenario %s", path)
	}
	if _, err := s.TaskRefs(); err != nil {
		return nil, errors.Wrapf(err, "invalid scenario %s", path)
	}
	if _, err := s.OfferViews(); err != nil {
		return nil, errors.Wrapf(err, "invalid scenario %s", path)
	}
	return &s, nil
}

// Application returns the application of the scenario.
func (s *Scenario) Application() *constraints.App {
	return &constraints.App{
		ID:          s.App.ID,
		Constraints: s.App.Constraints,
	}
}

// TaskRefs returns the running tasks of the scenario.
func (s *Scenario) TaskRefs() ([]*constraints.TaskRef, error) {
	tasks := make([]*constraints.TaskRef, 0, len(s.Tasks))
	seen := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if seen[t.ID] {
			return nil, errors.Errorf("duplicate task id %s", t.ID)
		}
		seen[t.ID] = true

		attrs, err := convertAttributes(t.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "task %s", t.ID)
		}
		tasks = append(tasks, &constraints.TaskRef{
			ID:         t.ID,
			Hostname:   t.Hostname,
			Attributes: attrs,
		})
	}
	return tasks, nil
}

// OfferViews returns the offers of the scenario.
func (s *Scenario) OfferViews() ([]*constraints.Offer, error) {
	offers := make([]*constraints.Offer, 0, len(s.Offers))
	for _, o := range s.Offers {
		attrs, err := convertAttributes(o.Attributes)
		if err != nil {
			return nil, errors.Wrapf(err, "offer on %s", o.Hostname)
		}
		offers = append(offers, &constraints.Offer{
			Hostname:   o.Hostname,
			Attributes: attrs,
		})
	}
	return offers, nil
}

// convertAttributes converts every attribute and reports all malformed
// ones at once.
func convertAttributes(specs []AttributeSpec) ([]*constraints.Attribute, error) {
	var attrs []*constraints.Attribute
	var errs error
	for _, spec := range specs {
		attr, err := spec.attribute()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		attrs = append(attrs, attr)
	}
	if errs != nil {
		return nil, errs
	}
	return attrs, nil
}

func (a AttributeSpec) attribute() (*constraints.Attribute, error) {
	var result *constraints.Attribute
	set := 0
	if a.Scalar != nil {
		result = constraints.NewScalarAttribute(a.Name, *a.Scalar)
		set++
	}
	if a.Text != nil {
		result = constraints.NewTextAttribute(a.Name, *a.Text)
		set++
	}
	if a.Ranges != nil {
		result = constraints.NewRangesAttribute(a.Name, a.Ranges...)
		set++
	}
	if a.Set != nil {
		result = constraints.NewSetAttribute(a.Name, a.Set...)
		set++
	}
	if set != 1 {
		return nil, errors.Errorf(
			"attribute %s needs exactly one of scalar, text, ranges or set", a.Name)
	}
	return result, nil
}
