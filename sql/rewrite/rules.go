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

package rewrite

import (
	"github.com/dolthub/go-cubesql/sql/cube"
)

// RewriteRules assembles the full rule set for a semantic schema and
// configuration. The set is pure: rules close over meta and cfg but hold
// no mutable state, so one compiled pack serves every rewrite.
func RewriteRules(meta *cube.MetaContext, cfg Config) []Rule {
	var rules []Rule
	rules = append(rules, algebraRules()...)
	rules = append(rules, dateRules()...)
	rules = append(rules, memberRules(meta, cfg)...)
	rules = append(rules, pushdownRules()...)
	rules = append(rules, scanRules(meta)...)
	rules = append(rules, joinRules()...)
	if cfg.PushDownPullUpSplit {
		rules = append(rules, splitRules(cfg)...)
	}
	if cfg.SQLPushDown {
		rules = append(rules, wrapperRules()...)
	}
	return rules
}

// CompileRewriteRules builds and compiles the default pack.
func CompileRewriteRules(meta *cube.MetaContext, cfg Config) (*RulePack, error) {
	return CompileRules(RewriteRules(meta, cfg))
}
