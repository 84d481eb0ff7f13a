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

// Package wrappersql renders wrapper plan subtrees into dialect SQL with
// ${Cube.member} placeholders and positional bind parameters.
package wrappersql

import (
	"fmt"
	"strings"
	"text/template"
)

// Dialect parameterizes SQL emission: identifier quoting, parameter
// placeholders, and the statement scaffold template.
type Dialect struct {
	Name string

	identOpen  string
	identClose string
	paramStyle string

	selectTemplate *template.Template
}

// selectData feeds the statement scaffold.
type selectData struct {
	Distinct bool
	Columns  string
	From     string
	Where    string
	GroupBy  string
	Having   string
	OrderBy  string
	Limit    string
	Offset   string
}

const selectScaffold = `SELECT {{if .Distinct}}DISTINCT {{end}}{{.Columns}} FROM {{.From}}` +
	`{{if .Where}} WHERE {{.Where}}{{end}}` +
	`{{if .GroupBy}} GROUP BY {{.GroupBy}}{{end}}` +
	`{{if .Having}} HAVING {{.Having}}{{end}}` +
	`{{if .OrderBy}} ORDER BY {{.OrderBy}}{{end}}` +
	`{{if .Limit}} LIMIT {{.Limit}}{{end}}` +
	`{{if .Offset}} OFFSET {{.Offset}}{{end}}`

func newDialect(name, identOpen, identClose, paramStyle string) *Dialect {
	return &Dialect{
		Name:           name,
		identOpen:      identOpen,
		identClose:     identClose,
		paramStyle:     paramStyle,
		selectTemplate: template.Must(template.New(name + "/statements/select").Parse(selectScaffold)),
	}
}

// Postgres is the primary dialect: double-quoted identifiers, 1-based $N
// parameters.
func Postgres() *Dialect { return newDialect("postgres", `"`, `"`, "$") }

// MySQL is the legacy dialect: backtick identifiers, ? parameters.
func MySQL() *Dialect { return newDialect("mysql", "`", "`", "?") }

// QuoteIdent quotes an identifier.
func (d *Dialect) QuoteIdent(name string) string {
	escaped := strings.ReplaceAll(name, d.identClose, d.identClose+d.identClose)
	return d.identOpen + escaped + d.identClose
}

// QuoteString renders a string literal with the dialect's escaping.
func (d *Dialect) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Param renders the placeholder for the 1-based parameter position.
func (d *Dialect) Param(position int) string {
	if d.paramStyle == "?" {
		return "?"
	}
	return fmt.Sprintf("$%d", position)
}

// MemberRef renders a cube member placeholder the backend substitutes with
// the member's canonical SQL.
func (d *Dialect) MemberRef(path string) string {
	return "${" + path + "}"
}

// RenderSelect renders a full SELECT statement from its parts.
func (d *Dialect) RenderSelect(data selectData) (string, error) {
	var sb strings.Builder
	if err := d.selectTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
