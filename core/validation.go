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

import "fmt"

var wellKnownProperties = map[PropertyName]bool{
	PropertyEntityName:     true,
	PropertyEntityType:     true,
	PropertyFacetName:      true,
	PropertyFacetValue:     true,
	PropertyVerb:           true,
	PropertySubject:        true,
	PropertyObject:         true,
	PropertyIndirectObject: true,
	PropertyTag:            true,
}

// ValidatePropertyName rejects property names outside the well-known set.
// A malformed name is a caller contract violation, not a soft miss.
func ValidatePropertyName(name PropertyName) error {
	if !wellKnownProperties[name] {
		return fmt.Errorf("%w: %q", ErrInvalidPropertyName, name)
	}
	return nil
}

// ValidateBooleanOp rejects boolean ops other than "and" and "or".
func ValidateBooleanOp(op BooleanOp) error {
	if op != BooleanAnd && op != BooleanOr {
		return fmt.Errorf("%w: %q", ErrInvalidBooleanOp, op)
	}
	return nil
}

// ValidateSearchTermGroup validates a group and its elements.
//
// Validation rules:
//   - BooleanOp must be "and" or "or"
//   - Every term must have non-empty text
//   - KnownProperty names must be in the well-known set
//
// NOT validated:
//   - Weights (normalized by PrepareSearchTerm)
//   - Empty Terms (legal; evaluates to no matches)
func ValidateSearchTermGroup(group *SearchTermGroup) error {
	if err := ValidateBooleanOp(group.BooleanOp); err != nil {
		return err
	}
	for _, element := range group.Terms {
		switch el := element.(type) {
		case SearchTerm:
			if el.Term.Text == "" {
				return ErrEmptyTermText
			}
		case PropertySearchTerm:
			if err := ValidatePropertySearchTerm(&el); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown search element type %T", element)
		}
	}
	return nil
}

// ValidatePropertySearchTerm validates a property term. Exactly one of
// KnownProperty and PropertyName must be set.
func ValidatePropertySearchTerm(term *PropertySearchTerm) error {
	if term.KnownProperty != "" {
		if term.PropertyName != nil {
			return fmt.Errorf("%w: both known property %q and property name term set",
				ErrInvalidPropertyName, term.KnownProperty)
		}
		return ValidatePropertyName(term.KnownProperty)
	}
	if term.PropertyName == nil || term.PropertyName.Term.Text == "" {
		return fmt.Errorf("%w: no property name", ErrInvalidPropertyName)
	}
	if term.PropertyValue.Term.Text == "" {
		return ErrEmptyTermText
	}
	return nil
}
