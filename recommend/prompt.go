package recommend

import (
	"fmt"
	"strings"

	"github.com/cinefind/cinefind/core"
)

const promptPreamble = `You are a movie expert helping a user choose what to watch.
The user asked: %q

Below are the candidate movies retrieved for that request. Choose up to %d
of them to recommend. Only pick from the candidates; never invent a movie.

Respond with JSON only, in exactly this shape:
{"recommendations": [{"title": "<movie title>", "reason": "<one or two sentences on why it fits the request>"}]}

Candidates:

`

// maxPicks caps how many recommendations the narrator is asked for.
const maxPicks = 3

// buildPrompt renders the query and candidate movies into the narrator prompt.
func buildPrompt(query string, results []*core.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, promptPreamble, query, maxPicks)

	for i, result := range results {
		if result == nil || result.Record == nil {
			continue
		}
		fmt.Fprintf(&sb, "Candidate %d:\n%s\n", i+1, formatMovie(result.Record))
	}

	return sb.String()
}

// formatMovie renders a record as the labeled block the narrator sees.
// Absent fields are omitted rather than rendered empty.
func formatMovie(record *core.MovieRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n", record.Title)
	if record.Year > 0 {
		fmt.Fprintf(&sb, "Year: %d\n", record.Year)
	}
	if len(record.Genres) > 0 {
		fmt.Fprintf(&sb, "Genres: %s\n", strings.Join(record.Genres, ", "))
	}
	if len(record.Cast) > 0 {
		fmt.Fprintf(&sb, "Cast: %s\n", strings.Join(record.Cast, ", "))
	}
	if len(record.Directors) > 0 {
		fmt.Fprintf(&sb, "Directors: %s\n", strings.Join(record.Directors, ", "))
	}
	if len(record.Companies) > 0 {
		fmt.Fprintf(&sb, "Companies: %s\n", strings.Join(record.Companies, ", "))
	}
	if record.Rating > 0 {
		fmt.Fprintf(&sb, "Rating: %.1f\n", record.Rating)
	}
	if record.Runtime > 0 {
		fmt.Fprintf(&sb, "Runtime: %d minutes\n", record.Runtime)
	}
	if record.Overview != "" {
		fmt.Fprintf(&sb, "Overview: %s\n", record.Overview)
	}

	return sb.String()
}
