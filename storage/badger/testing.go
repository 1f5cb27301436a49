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


package badger

import "github.com/cinefind/cinefind/storage"

// NewMemoryStore creates an in-memory movie repository and attribute index
// for testing. Returns movieRepo, attrIndex, backend, and error.
// Caller must close the repo and the backend when done.
func NewMemoryStore() (storage.MovieRepository, storage.AttributeIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	movieRepo, err := NewMovieRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	attrIndex, err := NewAttributeIndex(backend)
	if err != nil {
		movieRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return movieRepo, attrIndex, backend, nil
}
