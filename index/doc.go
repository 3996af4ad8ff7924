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


// Package index defines the conversation index capabilities the query
// engine evaluates against, plus in-memory reference implementations.
//
// TermToSemanticRefIndex is the primary term index. SecondaryIndexes
// aggregates the optional conversation-scoped indexes: property lookup,
// timestamp ranges and related-term (synonym) resolution. Every
// secondary capability is optional; the engine degrades gracefully when
// one is absent.
package index
