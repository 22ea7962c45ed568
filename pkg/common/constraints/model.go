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

// Offer is the view of a resource offer needed for constraint evaluation.
// The offer is expected to already fit the resource needs of the task.
type Offer struct {
	Hostname   string
	Attributes []*Attribute
}

// GetAttribute returns the offer attribute with the given name.
func (o *Offer) GetAttribute(name string) (*Attribute, bool) {
	return findAttribute(o.Attributes, name)
}

// TaskRef is a snapshot of one running instance of an application together
// with the hostname and attributes of the agent it runs on.
type TaskRef struct {
	ID         string
	Hostname   string
	Attributes []*Attribute
}

// GetAttribute returns the agent attribute with the given name.
func (t *TaskRef) GetAttribute(name string) (*Attribute, bool) {
	return findAttribute(t.Attributes, name)
}

// Application is the view of an application definition the engine needs.
type Application interface {
	// GetConstraints returns the placement constraints declared on the
	// application.
	GetConstraints() []*Constraint
}

// App is a minimal Application.
type App struct {
	ID          string
	Constraints []*Constraint
}

// GetConstraints implements Application.
func (a *App) GetConstraints() []*Constraint {
	if a == nil {
		return nil
	}
	return a.Constraints
}
