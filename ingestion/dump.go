package ingestion

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cinefind/cinefind/core"
)

// dumpMovie mirrors one entry of an extraction dump. Upstream extractors
// fill absent fields with "N/A" and are not consistent about numeric types,
// so the scalar fields all tolerate strings.
type dumpMovie struct {
	Title               string    `json:"title"`
	Overview            string    `json:"overview"`
	Genres              []string  `json:"genres"`
	ReleaseDate         string    `json:"release_date"`
	Rating              flexFloat `json:"rating"`
	Popularity          flexFloat `json:"popularity"`
	Director            string    `json:"director"`
	Actors              []string  `json:"actors"`
	ProductionCompanies []string  `json:"production_companies"`
	Runtime             flexInt   `json:"runtime"`
}

// flexFloat decodes a JSON number, a numeric string, or a placeholder like
// "N/A" (which becomes zero).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexInt is flexFloat for integer fields.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var v flexFloat
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// toRecord converts a dump entry to the canonical record.
// The release year comes from the leading "YYYY" of the date; unparseable
// dates leave it unset.
func (m *dumpMovie) toRecord() *core.MovieRecord {
	record := &core.MovieRecord{
		Title:      strings.TrimSpace(m.Title),
		Overview:   strings.TrimSpace(m.Overview),
		Genres:     cleanStrings(m.Genres),
		Cast:       cleanStrings(m.Actors),
		Companies:  cleanStrings(m.ProductionCompanies),
		Rating:     float64(m.Rating),
		Popularity: float64(m.Popularity),
		Runtime:    int(m.Runtime),
	}

	if director := strings.TrimSpace(m.Director); director != "" && !isPlaceholder(director) {
		record.Directors = []string{director}
	}

	if len(m.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(m.ReleaseDate[:4]); err == nil {
			record.Year = year
		}
	}

	if isPlaceholder(record.Title) {
		record.Title = ""
	}
	if record.Overview == "No description available." || isPlaceholder(record.Overview) {
		record.Overview = ""
	}

	return record
}

func cleanStrings(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || isPlaceholder(v) {
			continue
		}
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func isPlaceholder(s string) bool {
	return strings.EqualFold(s, "N/A") || strings.EqualFold(s, "None")
}
