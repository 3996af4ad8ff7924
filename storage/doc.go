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


// Package storage provides the persistence abstraction for recollect.
//
// Fuzzy location indexes are the expensive part of a conversation's
// index set to rebuild, so they persist as snapshots keyed by
// conversation name. The package defines the repository interface and
// the envelope serialization; backends live in subpackages.
//
// Public constructors in backend packages return the repository
// interface, not the concrete type, so consumers never couple to a
// particular backend:
//
//	repo, err := badger.NewSnapshotRepository(backend)
//
// Stored snapshots carry a BLAKE2b digest of the serialized payload.
// A load that fails verification reports ErrCorruptSnapshot rather
// than returning partially decoded data.
//
// All repository implementations must be thread-safe, and every method
// accepts a context.Context for cancellation.
package storage
