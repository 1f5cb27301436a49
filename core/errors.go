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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidMovieRecord indicates a MovieRecord failed validation.
	ErrInvalidMovieRecord = errors.New("invalid movie record")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidYear indicates a release year outside the plausible range.
	ErrInvalidYear = errors.New("release year out of range")

	// ErrInvalidRating indicates a rating outside the 0-10 scale.
	ErrInvalidRating = errors.New("rating must be between 0 and 10")

	// ErrInvalidFilterKind indicates an unknown FilterKind value.
	ErrInvalidFilterKind = errors.New("invalid filter kind")
)
