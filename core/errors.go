// Copyright 2025 Poiesic Systems
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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidPropertyName indicates an unknown well-known property name.
	ErrInvalidPropertyName = errors.New("invalid property name")

	// ErrInvalidBooleanOp indicates a SearchTermGroup with an unknown boolean op.
	ErrInvalidBooleanOp = errors.New("invalid boolean op")

	// ErrEmptyTermText indicates a term with empty text.
	ErrEmptyTermText = errors.New("term text cannot be empty")

	// ErrIndexDataMismatch indicates serialized index data whose parallel
	// sequences have different lengths.
	ErrIndexDataMismatch = errors.New("text location count does not match embedding count")
)
