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

package cube

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/dolthub/go-cubesql/sql"
)

// MetaContext is the set of cubes a rewrite resolves members against, plus
// the schema version that keys cache invalidation.
type MetaContext struct {
	Cubes         []*Cube `yaml:"cubes"`
	SchemaVersion string  `yaml:"schemaVersion"`
}

// NewMetaContext builds a MetaContext over the given cubes.
func NewMetaContext(cubes ...*Cube) *MetaContext {
	return &MetaContext{Cubes: cubes}
}

// Cube returns the cube with the given name.
func (m *MetaContext) Cube(name string) (*Cube, error) {
	for _, c := range m.Cubes {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, sql.ErrCubeNotFound.New(name)
}

// HasCube reports whether a cube with the given name exists.
func (m *MetaContext) HasCube(name string) bool {
	_, err := m.Cube(name)
	return err == nil
}

// Member resolves a "Cube.member" path.
func (m *MetaContext) Member(path string) (*Member, error) {
	cubeName, memberName, ok := SplitPath(path)
	if !ok {
		return nil, sql.ErrMemberNotFound.New(path)
	}
	c, err := m.Cube(cubeName)
	if err != nil {
		return nil, err
	}
	member, ok := c.Member(memberName)
	if !ok {
		return nil, sql.ErrMemberNotFound.New(path)
	}
	return member, nil
}

// ResolveColumn resolves a column reference against the cubes. When table
// is empty every cube is searched; ambiguous bare names resolve to the
// first declaring cube, matching the lookup order the backend uses.
func (m *MetaContext) ResolveColumn(table, name string) (*Member, bool) {
	if table != "" {
		c, err := m.Cube(table)
		if err != nil {
			return nil, false
		}
		return c.Member(name)
	}
	for _, c := range m.Cubes {
		if member, ok := c.Member(name); ok {
			return member, true
		}
	}
	return nil, false
}

// SplitPath splits a "Cube.member" path.
func SplitPath(path string) (cube, member string, ok bool) {
	i := strings.IndexByte(path, '.')
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

// LoadYAML reads a MetaContext from YAML.
func LoadYAML(r io.Reader) (*MetaContext, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var meta MetaContext
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadYAMLFile reads a MetaContext from a YAML file.
func LoadYAMLFile(path string) (*MetaContext, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}
