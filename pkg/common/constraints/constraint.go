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

package constraints

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// _infinity is the GROUP_BY and MAX_PER value standing for no bound.
const _infinity = "inf"

// Operator is the placement rule applied by a constraint. The numbering
// matches the wire enum.
type Operator int32

const (
	// OperatorUnique forbids two instances from sharing a field value.
	OperatorUnique Operator = 0
	// OperatorLike requires the field value to match a regular expression.
	OperatorLike Operator = 1
	// OperatorCluster forces all instances onto one field value.
	OperatorCluster Operator = 2
	// OperatorGroupBy spreads instances evenly across field values.
	OperatorGroupBy Operator = 3
	// OperatorUnlike requires the field value not to match a regular
	// expression.
	OperatorUnlike Operator = 4
	// OperatorMaxPer caps the number of instances sharing a field value.
	OperatorMaxPer Operator = 5
)

var _operatorNames = map[Operator]string{
	OperatorUnique:  "UNIQUE",
	OperatorLike:    "LIKE",
	OperatorCluster: "CLUSTER",
	OperatorGroupBy: "GROUP_BY",
	OperatorUnlike:  "UNLIKE",
	OperatorMaxPer:  "MAX_PER",
}

var _operatorValues = func() map[string]Operator {
	values := make(map[string]Operator, len(_operatorNames))
	for op, name := range _operatorNames {
		values[name] = op
	}
	return values
}()

func (o Operator) String() string {
	if name, ok := _operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int32(o))
}

// ParseOperator parses an operator name such as "GROUP_BY". Matching is
// case-insensitive.
func ParseOperator(s string) (Operator, error) {
	if op, ok := _operatorValues[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return 0, errors.Wrapf(ErrUnknownOperator, "operator %q", s)
}

// MarshalYAML implements yaml.Marshaler.
func (o Operator) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Operator) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Constraint is a placement rule declared on an application.
type Constraint struct {
	// Field is an agent attribute name or "hostname".
	Field string `yaml:"field" json:"field"`
	// Operator is the rule applied to the field.
	Operator Operator `yaml:"operator" json:"operator"`
	// Value is a regular expression for LIKE and UNLIKE, the required value
	// for CLUSTER and a number or "inf" for GROUP_BY and MAX_PER.
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
}

func (c *Constraint) String() string {
	if c.Value == "" {
		return fmt.Sprintf("%s:%s", c.Field, c.Operator)
	}
	return fmt.Sprintf("%s:%s:%s", c.Field, c.Operator, c.Value)
}

// UnmarshalYAML accepts both the mapping form
//
//	{field: rack, operator: GROUP_BY, value: "2"}
//
// and the compact list form ["rack", "GROUP_BY", "2"].
func (c *Constraint) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var triple []string
	if err := unmarshal(&triple); err == nil {
		parsed, err := ParseConstraint(triple)
		if err != nil {
			return err
		}
		*c = *parsed
		return nil
	}

	type plain Constraint
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*c = Constraint(p)
	return nil
}

// ParseConstraint builds a constraint from its list form: field, operator
// and an optional value.
func ParseConstraint(parts []string) (*Constraint, error) {
	if len(parts) < 2 || len(parts) > 3 {
		return nil, errors.Wrapf(
			ErrMalformedConstraint,
			"expected [field, operator, value?], got %d elements", len(parts))
	}
	op, err := ParseOperator(parts[1])
	if err != nil {
		return nil, err
	}
	c := &Constraint{Field: parts[0], Operator: op}
	if len(parts) == 3 {
		c.Value = parts[2]
	}
	return c, nil
}

// Validate checks that the constraint value makes sense for its operator.
func Validate(c *Constraint) error {
	if c == nil {
		return errors.Wrap(ErrMalformedConstraint, "nil constraint")
	}
	if c.Field == "" {
		return errors.Wrapf(ErrMalformedConstraint, "%s: missing field", c)
	}

	switch c.Operator {
	case OperatorUnique:
		if c.Value != "" {
			return errors.Wrapf(ErrMalformedConstraint,
				"%s: UNIQUE does not take a value", c)
		}
	case OperatorLike, OperatorUnlike:
		if c.Value == "" {
			return errors.Wrapf(ErrMalformedConstraint,
				"%s: %s requires a pattern", c, c.Operator)
		}
		if _, err := regexp.Compile(c.Value); err != nil {
			return errors.Wrapf(ErrInvalidPattern, "%s: %v", c, err)
		}
	case OperatorGroupBy:
		if c.Value != "" && c.Value != _infinity {
			if _, err := strconv.Atoi(c.Value); err != nil {
				return errors.Wrapf(ErrMalformedConstraint,
					"%s: GROUP_BY value must be an integer or %q", c, _infinity)
			}
		}
	case OperatorMaxPer:
		if _, err := parseMaxPer(c.Value); err != nil {
			return errors.Wrapf(err, "%s", c)
		}
	case OperatorCluster:
	default:
		return errors.Wrapf(ErrUnknownOperator, "%s", c)
	}
	return nil
}

// ValidateAll validates every constraint and returns all failures.
func ValidateAll(constraints []*Constraint) error {
	var errs error
	for _, c := range constraints {
		if err := Validate(c); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

// parseGroupByMinimum returns the minimum number of distinct groups a
// GROUP_BY constraint asks for. Anything unparsable means no minimum.
func parseGroupByMinimum(value string) int {
	if value == _infinity {
		return math.MaxInt
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseMaxPer(value string) (int, error) {
	if value == _infinity {
		return math.MaxInt, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidMaxPerValue, "value %q", value)
	}
	return n, nil
}
