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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested snapshot was not found.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorruptSnapshot indicates that stored snapshot bytes failed
	// checksum verification or could not be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrConversationNameRequired is returned when a snapshot operation
	// is given an empty conversation name.
	ErrConversationNameRequired = errors.New("conversation name required")
)
