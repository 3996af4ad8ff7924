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


// Package query compiles and evaluates structured term queries over a
// conversation's semantic indexes.
//
// A query is a boolean group of search terms and property terms,
// optionally narrowed by a when-filter: a date range, property scoping
// terms, or a knowledge type. Compilation turns the group into an
// expression tree; evaluation walks the tree against the conversation's
// term and property indexes, accumulating scored semantic refs, then
// groups the matches by knowledge type.
//
// Terms expand to synonyms through the conversation's related terms
// index before evaluation unless the caller asks for exact matching.
package query
