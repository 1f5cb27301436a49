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

import "fmt"

// Release years accepted by validation. The lower bound predates the first
// commercial screenings; the upper bound leaves room for announced titles.
const (
	MinReleaseYear = 1870
	MaxReleaseYear = 2100
)

// ValidateMovieRecord validates a MovieRecord according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Year, when set, must be within [MinReleaseYear, MaxReleaseYear]
//   - Rating must be within [0, 10]
//
// NOT validated (populated later by the loader):
//   - Vector (can be empty until the record is embedded)
//   - ID (0 is valid; a content-derived ID is assigned on insert)
func ValidateMovieRecord(record *MovieRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidMovieRecord)
	}

	if record.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMovieRecord, ErrEmptyTitle)
	}

	if record.Year != 0 && !IsValidYear(record.Year) {
		return fmt.Errorf("%w: %w: %d", ErrInvalidMovieRecord, ErrInvalidYear, record.Year)
	}

	if record.Rating < 0 || record.Rating > 10 {
		return fmt.Errorf("%w: %w: %g", ErrInvalidMovieRecord, ErrInvalidRating, record.Rating)
	}

	return nil
}

// ValidateFilterKind validates that a FilterKind has a known value.
func ValidateFilterKind(kind FilterKind) error {
	switch kind {
	case FilterPerson, FilterGenre, FilterCompany, FilterYear, FilterYearRange, FilterRatingMin:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidFilterKind, kind)
	}
}

// IsValidYear checks if a release year is within the accepted range.
func IsValidYear(year int) bool {
	return year >= MinReleaseYear && year <= MaxReleaseYear
}
