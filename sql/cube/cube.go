// Copyright 2025 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cube models the semantic schema the rewriter compiles against: a
// set of cubes, each exposing dimensions, measures, time dimensions,
// segments and joins.
package cube

import (
	"strings"

	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/types"
)

// AggType is the aggregation kind of a measure.
type AggType string

const (
	Sum           AggType = "sum"
	Avg           AggType = "avg"
	Min           AggType = "min"
	Max           AggType = "max"
	Count         AggType = "count"
	CountDistinct AggType = "countDistinct"
	Number        AggType = "number"
)

// MemberKind discriminates the member classes of a cube.
type MemberKind byte

const (
	KindDimension MemberKind = iota
	KindTimeDimension
	KindMeasure
	KindSegment
)

// Dimension is a cube dimension. Type is one of "string", "number",
// "boolean" and "time"; time-typed dimensions are the time dimensions of
// the cube.
type Dimension struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	SQL  string `yaml:"sql"`
}

// Measure is a cube measure with its aggregation kind.
type Measure struct {
	Name string  `yaml:"name"`
	Type AggType `yaml:"type"`
	SQL  string  `yaml:"sql"`
}

// Segment is a named boolean filter defined by the cube.
type Segment struct {
	Name string `yaml:"name"`
	SQL  string `yaml:"sql"`
}

// Join declares a cube-level join to another cube.
type Join struct {
	Name         string `yaml:"name"`
	Relationship string `yaml:"relationship"`
	SQL          string `yaml:"sql"`
}

// Cube is one semantic relation.
type Cube struct {
	Name       string      `yaml:"name"`
	Dimensions []Dimension `yaml:"dimensions"`
	Measures   []Measure   `yaml:"measures"`
	Segments   []Segment   `yaml:"segments"`
	Joins      []Join      `yaml:"joins"`
}

// Member is a resolved reference to a cube member.
type Member struct {
	Cube *Cube
	Kind MemberKind
	Name string
	// Type is the column type of the member as seen by SQL.
	Type sql.Type
	// Agg is set for measures.
	Agg AggType
}

// Path returns the fully qualified "Cube.member" path.
func (m *Member) Path() string {
	return m.Cube.Name + "." + m.Name
}

// Dimension returns the dimension with the given name, if any.
func (c *Cube) Dimension(name string) (*Dimension, bool) {
	for i := range c.Dimensions {
		if strings.EqualFold(c.Dimensions[i].Name, name) {
			return &c.Dimensions[i], true
		}
	}
	return nil, false
}

// Measure returns the measure with the given name, if any.
func (c *Cube) Measure(name string) (*Measure, bool) {
	for i := range c.Measures {
		if strings.EqualFold(c.Measures[i].Name, name) {
			return &c.Measures[i], true
		}
	}
	return nil, false
}

// Segment returns the segment with the given name, if any.
func (c *Cube) Segment(name string) (*Segment, bool) {
	for i := range c.Segments {
		if strings.EqualFold(c.Segments[i].Name, name) {
			return &c.Segments[i], true
		}
	}
	return nil, false
}

// Member resolves a member name within the cube.
func (c *Cube) Member(name string) (*Member, bool) {
	if d, ok := c.Dimension(name); ok {
		kind := KindDimension
		if d.Type == "time" {
			kind = KindTimeDimension
		}
		return &Member{Cube: c, Kind: kind, Name: d.Name, Type: dimensionType(d.Type)}, true
	}
	if m, ok := c.Measure(name); ok {
		return &Member{Cube: c, Kind: KindMeasure, Name: m.Name, Type: measureType(m.Type), Agg: m.Type}, true
	}
	if s, ok := c.Segment(name); ok {
		return &Member{Cube: c, Kind: KindSegment, Name: s.Name, Type: types.Boolean}, true
	}
	return nil, false
}

// Schema returns the relational schema the cube presents to SQL: dimensions
// first, in declaration order, then measures.
func (c *Cube) Schema() sql.Schema {
	var schema sql.Schema
	for i := range c.Dimensions {
		d := &c.Dimensions[i]
		schema = append(schema, &sql.Column{
			Name:     d.Name,
			Type:     dimensionType(d.Type),
			Source:   c.Name,
			Nullable: true,
		})
	}
	for i := range c.Measures {
		m := &c.Measures[i]
		schema = append(schema, &sql.Column{
			Name:     m.Name,
			Type:     measureType(m.Type),
			Source:   c.Name,
			Nullable: true,
		})
	}
	return schema
}

func dimensionType(t string) sql.Type {
	switch t {
	case "number":
		return types.Float64
	case "boolean":
		return types.Boolean
	case "time":
		return types.Timestamp
	default:
		return types.Text
	}
}

func measureType(t AggType) sql.Type {
	switch t {
	case Count, CountDistinct:
		return types.Int64
	default:
		return types.Float64
	}
}
