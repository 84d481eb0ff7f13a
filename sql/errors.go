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

package sql

import (
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrRuleCompile is returned when a rewrite rule fails to compile. It is
	// fatal: an engine with a malformed rule pack refuses to serve queries.
	ErrRuleCompile = errors.NewKind("rule %s: %s")

	// ErrPlanConversion is returned when an input plan contains a construct
	// the term language does not model.
	ErrPlanConversion = errors.NewKind("unable to convert plan node: %s")

	// ErrUnrepresentableRoot is returned when extraction cannot produce a
	// finite-cost plan for the root class.
	ErrUnrepresentableRoot = errors.NewKind("query not supported: %s")

	// ErrWrapperGenerate is returned when the SQL generator cannot render a
	// wrapped subtree.
	ErrWrapperGenerate = errors.NewKind("unable to generate SQL for: %s")

	// ErrTransport is returned when the backend transport fails.
	ErrTransport = errors.NewKind("transport: %s")

	// ErrInvalidChildren is returned by WithChildren when the number of
	// children does not match the node's arity.
	ErrInvalidChildren = errors.NewKind("invalid children number, got %d, expected %d")

	// ErrInvalidChildType is returned when a child node or expression has an
	// unexpected type.
	ErrInvalidChildType = errors.NewKind("%T: invalid child of type %T")

	// ErrKeyNotFound is returned by caches on a miss.
	ErrKeyNotFound = errors.NewKind("memory: key %v not found in cache")

	// ErrCubeNotFound is returned when a query references an unknown cube.
	ErrCubeNotFound = errors.NewKind("cube not found: %s")

	// ErrMemberNotFound is returned when a query references an unknown cube
	// member.
	ErrMemberNotFound = errors.NewKind("member not found: %s")

	// ErrUnsupportedFeature is returned for constructs outside the supported
	// dialect surface.
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %s")

	// ErrRewriteCancelled is returned when a rewrite is aborted before the
	// root class becomes representable.
	ErrRewriteCancelled = errors.NewKind("rewrite cancelled: %s")
)
