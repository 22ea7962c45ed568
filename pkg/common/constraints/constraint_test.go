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
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"
)

type ConstraintTestSuite struct {
	suite.Suite
}

func TestConstraintTestSuite(t *testing.T) {
	suite.Run(t, new(ConstraintTestSuite))
}

func (suite *ConstraintTestSuite) TestParseOperator() {
	for op, name := range _operatorNames {
		parsed, err := ParseOperator(name)
		suite.NoError(err)
		suite.Equal(op, parsed)
		suite.Equal(name, op.String())
	}

	op, err := ParseOperator(" group_by ")
	suite.NoError(err)
	suite.Equal(OperatorGroupBy, op)

	_, err = ParseOperator("NEAR")
	suite.Equal(ErrUnknownOperator, errors.Cause(err))

	suite.Equal("Operator(42)", Operator(42).String())
}

func (suite *ConstraintTestSuite) TestParseConstraint() {
	c, err := ParseConstraint([]string{"hostname", "UNIQUE"})
	suite.NoError(err)
	suite.Equal(&Constraint{Field: "hostname", Operator: OperatorUnique}, c)
	suite.Equal("hostname:UNIQUE", c.String())

	c, err = ParseConstraint([]string{"rack", "GROUP_BY", "3"})
	suite.NoError(err)
	suite.Equal(&Constraint{Field: "rack", Operator: OperatorGroupBy, Value: "3"}, c)
	suite.Equal("rack:GROUP_BY:3", c.String())

	_, err = ParseConstraint([]string{"rack"})
	suite.Equal(ErrMalformedConstraint, errors.Cause(err))

	_, err = ParseConstraint([]string{"rack", "LIKE", "a", "b"})
	suite.Equal(ErrMalformedConstraint, errors.Cause(err))

	_, err = ParseConstraint([]string{"rack", "SOMEWHERE"})
	suite.Equal(ErrUnknownOperator, errors.Cause(err))
}

func (suite *ConstraintTestSuite) TestUnmarshalYAML() {
	doc := `
- [hostname, UNIQUE]
- [rack, GROUP_BY, 2]
- field: zone
  operator: like
  value: "us-.*"
`
	var parsed []*Constraint
	suite.NoError(yaml.Unmarshal([]byte(doc), &parsed))
	suite.Equal([]*Constraint{
		{Field: "hostname", Operator: OperatorUnique},
		{Field: "rack", Operator: OperatorGroupBy, Value: "2"},
		{Field: "zone", Operator: OperatorLike, Value: "us-.*"},
	}, parsed)

	out, err := yaml.Marshal(parsed[2])
	suite.NoError(err)
	suite.Contains(string(out), "operator: LIKE")

	var bad []*Constraint
	err = yaml.Unmarshal([]byte("- {field: rack, operator: NEAR}"), &bad)
	suite.Error(err)
}

func (suite *ConstraintTestSuite) TestValidate() {
	table := []struct {
		msg         string
		constraint  *Constraint
		expectedErr error
	}{
		{"nil", nil, ErrMalformedConstraint},
		{"missing field", &Constraint{Operator: OperatorUnique}, ErrMalformedConstraint},
		{"unique", hostnameConstraint(OperatorUnique, ""), nil},
		{"unique with value", hostnameConstraint(OperatorUnique, "x"), ErrMalformedConstraint},
		{"like", rackConstraint(OperatorLike, "r[0-9]+"), nil},
		{"like empty", rackConstraint(OperatorLike, ""), ErrMalformedConstraint},
		{"unlike bad pattern", rackConstraint(OperatorUnlike, "("), ErrInvalidPattern},
		{"group by default", rackConstraint(OperatorGroupBy, ""), nil},
		{"group by number", rackConstraint(OperatorGroupBy, "3"), nil},
		{"group by inf", rackConstraint(OperatorGroupBy, "inf"), nil},
		{"group by junk", rackConstraint(OperatorGroupBy, "many"), ErrMalformedConstraint},
		{"max per", rackConstraint(OperatorMaxPer, "2"), nil},
		{"max per junk", rackConstraint(OperatorMaxPer, "two"), ErrInvalidMaxPerValue},
		{"max per empty", rackConstraint(OperatorMaxPer, ""), ErrInvalidMaxPerValue},
		{"cluster", rackConstraint(OperatorCluster, ""), nil},
		{"cluster value", rackConstraint(OperatorCluster, "r1"), nil},
		{"unknown", rackConstraint(Operator(42), ""), ErrUnknownOperator},
	}
	for _, tt := range table {
		err := Validate(tt.constraint)
		if tt.expectedErr == nil {
			suite.NoError(err, tt.msg)
			continue
		}
		suite.Equal(tt.expectedErr, errors.Cause(err), tt.msg)
	}
}

func (suite *ConstraintTestSuite) TestValidateAll() {
	suite.NoError(ValidateAll(nil))
	suite.NoError(ValidateAll([]*Constraint{
		hostnameConstraint(OperatorUnique, ""),
		rackConstraint(OperatorGroupBy, "2"),
	}))

	err := ValidateAll([]*Constraint{
		hostnameConstraint(OperatorUnique, ""),
		rackConstraint(OperatorMaxPer, "x"),
		rackConstraint(OperatorLike, ""),
	})
	suite.Error(err)
	merr, ok := err.(*multierror.Error)
	suite.True(ok)
	suite.Len(merr.Errors, 2)
}

func (suite *ConstraintTestSuite) TestParseGroupByMinimum() {
	suite.Equal(0, parseGroupByMinimum(""))
	suite.Equal(0, parseGroupByMinimum("many"))
	suite.Equal(0, parseGroupByMinimum("-4"))
	suite.Equal(3, parseGroupByMinimum("3"))
	suite.Equal(int(^uint(0)>>1), parseGroupByMinimum("inf"))
}
