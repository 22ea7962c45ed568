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

package mesos

import (
	mesos "github.com/mesos/mesos-go/api/v1/lib"
	log "github.com/sirupsen/logrus"

	"github.com/uber/peloton-constraints/pkg/common/constraints"
)

// ConvertOffer returns the view of a Mesos offer used to evaluate placement
// constraints.
func ConvertOffer(offer *mesos.Offer) *constraints.Offer {
	return &constraints.Offer{
		Hostname:   offer.GetHostname(),
		Attributes: ConvertAttributes(offer.GetAttributes()),
	}
}

// ConvertTaskRef returns the running task with the given id placed on the
// given agent.
func ConvertTaskRef(id string, agent *mesos.AgentInfo) *constraints.TaskRef {
	return &constraints.TaskRef{
		ID:         id,
		Hostname:   agent.GetHostname(),
		Attributes: ConvertAttributes(agent.GetAttributes()),
	}
}

// ConvertAttributes converts agent attributes. Attributes of an unknown
// type are skipped.
func ConvertAttributes(attributes []mesos.Attribute) []*constraints.Attribute {
	var result []*constraints.Attribute
	for i := range attributes {
		attr := &attributes[i]
		name := attr.GetName()

		switch attr.GetType() {
		case mesos.SCALAR:
			result = append(result, constraints.NewScalarAttribute(
				name, attr.GetScalar().GetValue()))

		case mesos.TEXT:
			result = append(result, constraints.NewTextAttribute(
				name, attr.GetText().GetValue()))

		case mesos.RANGES:
			var ranges []constraints.Range
			for _, r := range attr.GetRanges().GetRange() {
				ranges = append(ranges, constraints.Range{
					Begin: r.GetBegin(),
					End:   r.GetEnd(),
				})
			}
			result = append(result, constraints.NewRangesAttribute(name, ranges...))

		case mesos.SET:
			result = append(result, constraints.NewSetAttribute(
				name, attr.GetSet().GetItem()...))

		default:
			log.WithFields(log.Fields{
				"attr_name": name,
				"attr_type": attr.GetType(),
			}).Warn("Attribute type is not supported yet")
		}
	}
	return result
}
