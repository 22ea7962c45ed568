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
	"github.com/pborman/uuid"

	"github.com/uber/peloton-constraints/pkg/common"
)

const (
	_testHost1 = "test-host1"
	_testHost2 = "test-host2"
	_testHost3 = "test-host3"
	_rackLabel = "rack"
)

// newTask returns a running task with a random id.
func newTask(hostname string, attributes ...*Attribute) *TaskRef {
	return newNamedTask(uuid.New(), hostname, attributes...)
}

func newNamedTask(id, hostname string, attributes ...*Attribute) *TaskRef {
	return &TaskRef{ID: id, Hostname: hostname, Attributes: attributes}
}

// newTasks returns count tasks on the given host.
func newTasks(count int, hostname string, attributes ...*Attribute) []*TaskRef {
	var tasks []*TaskRef
	for i := 0; i < count; i++ {
		tasks = append(tasks, newTask(hostname, attributes...))
	}
	return tasks
}

func newOffer(hostname string, attributes ...*Attribute) *Offer {
	return &Offer{Hostname: hostname, Attributes: attributes}
}

func rack(value string) *Attribute {
	return NewTextAttribute(_rackLabel, value)
}

func hostnameConstraint(op Operator, value string) *Constraint {
	return &Constraint{Field: common.HostnameField, Operator: op, Value: value}
}

func rackConstraint(op Operator, value string) *Constraint {
	return &Constraint{Field: _rackLabel, Operator: op, Value: value}
}

func concat(groups ...[]*TaskRef) []*TaskRef {
	var all []*TaskRef
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}
