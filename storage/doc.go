// Copyright 2025 Cinefind Authors
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


// Package storage provides the storage abstraction layer for cinefind.
//
// This package defines repository interfaces that decouple storage
// implementation from query logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Architecture
//
// The layer follows the Repository pattern:
//
//   - MovieRepository: the movie corpus store plus its precomputed
//     embeddings (vector similarity scan, per-id embedding lookup)
//   - AttributeIndex: exact lookup of movies by person, genre, company,
//     year, year range, and minimum rating
//
// Both are populated once by the loader and read-only during serving.
// Constructors in backend packages return these interfaces rather than
// concrete types; consumers can substitute mock implementations in tests.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
