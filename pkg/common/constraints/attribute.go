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
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// _scalarPrecision is the number of fraction digits kept when a scalar
	// attribute is rendered.
	_scalarPrecision = 3
	_groupSize       = 3
	_groupSeparator  = ","
)

// Kind is the value type of an agent attribute.
type Kind int

const (
	// KindScalar is a floating point attribute.
	KindScalar Kind = iota
	// KindText is a free form string attribute.
	KindText
	// KindRanges is a set of closed integer ranges.
	KindRanges
	// KindSet is an unordered set of strings.
	KindSet
)

var _kindNames = map[Kind]string{
	KindScalar: "SCALAR",
	KindText:   "TEXT",
	KindRanges: "RANGES",
	KindSet:    "SET",
}

func (k Kind) String() string {
	if name, ok := _kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Range is a closed integer interval [Begin, End].
type Range struct {
	Begin uint64 `yaml:"begin" json:"begin"`
	End   uint64 `yaml:"end" json:"end"`
}

// Attribute is a named, typed property of a cluster agent. Only the value
// field matching Kind is meaningful.
type Attribute struct {
	Name   string
	Kind   Kind
	Scalar float64
	Text   string
	Ranges []Range
	Set    []string
}

// NewScalarAttribute returns a scalar attribute.
func NewScalarAttribute(name string, value float64) *Attribute {
	return &Attribute{Name: name, Kind: KindScalar, Scalar: value}
}

// NewTextAttribute returns a text attribute.
func NewTextAttribute(name, value string) *Attribute {
	return &Attribute{Name: name, Kind: KindText, Text: value}
}

// NewRangesAttribute returns a ranges attribute.
func NewRangesAttribute(name string, ranges ...Range) *Attribute {
	return &Attribute{Name: name, Kind: KindRanges, Ranges: ranges}
}

// NewSetAttribute returns a set attribute.
func NewSetAttribute(name string, items ...string) *Attribute {
	return &Attribute{Name: name, Kind: KindSet, Set: items}
}

// Format renders the attribute value into its canonical string form, which
// is what LIKE and UNLIKE patterns and CLUSTER values are compared against.
func (a *Attribute) Format() string {
	switch a.Kind {
	case KindScalar:
		return formatScalar(a.Scalar)
	case KindText:
		return a.Text
	case KindRanges:
		return formatRanges(a.Ranges)
	case KindSet:
		return formatSet(a.Set)
	default:
		return ""
	}
}

// Key returns the grouping key of the attribute value.
func (a *Attribute) Key() Key {
	return Key{Kind: a.Kind, Value: a.Format(), present: true}
}

// Key identifies a group of tasks sharing a value on a constraint field.
// Keys are qualified by the value kind so that values of different kinds
// never compare equal even when they render to the same string.
type Key struct {
	Kind  Kind
	Value string

	present bool
}

// _absentKey groups tasks whose agent does not carry the attribute.
var _absentKey = Key{}

// hostnameKey is the grouping key of a hostname. Hostnames are text.
func hostnameKey(hostname string) Key {
	return Key{Kind: KindText, Value: hostname, present: true}
}

// Present returns false for the group of tasks lacking the attribute.
func (k Key) Present() bool {
	return k.present
}

func (k Key) String() string {
	if !k.present {
		return "<absent>"
	}
	return k.Value
}

// less orders keys with the absent key first, then by kind and value.
func (k Key) less(o Key) bool {
	if k.present != o.present {
		return !k.present
	}
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	return k.Value < o.Value
}

// formatScalar renders a number the way an English locale number format
// does: at most three fraction digits rounded half to even, no trailing
// zeros and a comma between every three integer digits.
func formatScalar(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	s := decimal.NewFromFloat(v).RoundBank(_scalarPrecision).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], strings.TrimRight(s[i+1:], "0")
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%_groupSize == 0 {
			b.WriteString(_groupSeparator)
		}
		b.WriteRune(c)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

func formatRanges(ranges []Range) string {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Begin != sorted[j].Begin {
			return sorted[i].Begin < sorted[j].Begin
		}
		return sorted[i].End < sorted[j].End
	})

	parts := make([]string, 0, len(sorted))
	for _, r := range sorted {
		parts = append(parts, fmt.Sprintf("%d-%d", r.Begin, r.End))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func formatSet(items []string) string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	return "{" + strings.Join(sorted, ",") + "}"
}

// findAttribute returns the attribute with the given name.
func findAttribute(attributes []*Attribute, name string) (*Attribute, bool) {
	for _, attr := range attributes {
		if attr != nil && attr.Name == name {
			return attr, true
		}
	}
	return nil, false
}
