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

import "github.com/pkg/errors"

var (
	// ErrUnknownOperator is returned for an operator outside the known set.
	ErrUnknownOperator = errors.New("unknown constraint operator")

	// ErrInvalidMaxPerValue is returned when a MAX_PER constraint value is
	// not an integer.
	ErrInvalidMaxPerValue = errors.New("invalid MAX_PER value")

	// ErrInvalidPattern is returned when a LIKE or UNLIKE value does not
	// compile as a regular expression.
	ErrInvalidPattern = errors.New("invalid constraint pattern")

	// ErrMalformedConstraint is returned by validation and parsing.
	ErrMalformedConstraint = errors.New("malformed constraint")

	// ErrInvalidRemovalCount is returned when asked to remove a negative
	// number of tasks or more tasks than are running.
	ErrInvalidRemovalCount = errors.New("invalid number of tasks to remove")
)
