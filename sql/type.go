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

// Type is a value type attached to expressions and schema columns. Concrete
// implementations live in the types package.
type Type interface {
	// String returns the SQL spelling of the type.
	String() string
	// Equals reports whether two types are the same type, ignoring display
	// width details.
	Equals(other Type) bool
	// IsNumeric reports whether values of the type are numbers.
	IsNumeric() bool
	// IsText reports whether values of the type are character strings.
	IsText() bool
	// IsTemporal reports whether values of the type are dates, times or
	// timestamps.
	IsTemporal() bool
}
