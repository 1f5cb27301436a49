package core

import (
	"errors"
	"testing"
)

func TestValidateMovieRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *MovieRecord
		wantErr error
	}{
		{
			name: "valid record",
			record: &MovieRecord{
				Id:     1,
				Title:  "Edge of Tomorrow",
				Year:   2014,
				Rating: 7.9,
			},
			wantErr: nil,
		},
		{
			name: "valid record without vector",
			record: &MovieRecord{
				Title:  "Top Gun",
				Year:   1986,
				Vector: nil,
			},
			wantErr: nil,
		},
		{
			name: "valid record without upstream ID",
			record: &MovieRecord{
				Id:    0,
				Title: "Oppenheimer",
				Year:  2023,
			},
			wantErr: nil,
		},
		{
			name: "valid record with unknown year",
			record: &MovieRecord{
				Title: "Untitled Project",
				Year:  0,
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidMovieRecord,
		},
		{
			name: "empty title",
			record: &MovieRecord{
				Title: "",
				Year:  2000,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "year too early",
			record: &MovieRecord{
				Title: "Prehistoric",
				Year:  1850,
			},
			wantErr: ErrInvalidYear,
		},
		{
			name: "year too late",
			record: &MovieRecord{
				Title: "Far Future",
				Year:  2200,
			},
			wantErr: ErrInvalidYear,
		},
		{
			name: "negative rating",
			record: &MovieRecord{
				Title:  "Panned",
				Year:   2000,
				Rating: -1,
			},
			wantErr: ErrInvalidRating,
		},
		{
			name: "rating above scale",
			record: &MovieRecord{
				Title:  "Overhyped",
				Year:   2000,
				Rating: 10.5,
			},
			wantErr: ErrInvalidRating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMovieRecord(tt.record)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMovieRecord() unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMovieRecord() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidMovieRecord) {
				t.Errorf("ValidateMovieRecord() error should wrap ErrInvalidMovieRecord, got %v", err)
			}
		})
	}
}

func TestValidateFilterKind(t *testing.T) {
	for _, kind := range []FilterKind{
		FilterPerson, FilterGenre, FilterCompany,
		FilterYear, FilterYearRange, FilterRatingMin,
	} {
		if err := ValidateFilterKind(kind); err != nil {
			t.Errorf("ValidateFilterKind(%v) unexpected error: %v", kind, err)
		}
	}

	if err := ValidateFilterKind(FilterKind(0)); !errors.Is(err, ErrInvalidFilterKind) {
		t.Errorf("ValidateFilterKind(0) error = %v, want ErrInvalidFilterKind", err)
	}
	if err := ValidateFilterKind(FilterKind(42)); !errors.Is(err, ErrInvalidFilterKind) {
		t.Errorf("ValidateFilterKind(42) error = %v, want ErrInvalidFilterKind", err)
	}
}

func TestIsValidYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{MinReleaseYear, true},
		{MaxReleaseYear, true},
		{1994, true},
		{MinReleaseYear - 1, false},
		{MaxReleaseYear + 1, false},
		{0, false},
		{-5, false},
	}

	for _, tt := range tests {
		if got := IsValidYear(tt.year); got != tt.want {
			t.Errorf("IsValidYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}
