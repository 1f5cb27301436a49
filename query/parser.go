package query

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/cinefind/cinefind/core"
)

// Parser turns free-form query text into a ParsedQuery: a flat set of
// structured filters plus the residual semantic text. Parsing is total;
// only a blank query is an error, anything else degrades to semantic text.
type Parser struct {
	vocab  Vocabulary
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewParser creates a new query parser.
func NewParser(vocab Vocabulary, opts ...Option) (*Parser, error) {
	if vocab == nil {
		return nil, ErrVocabularyRequired
	}

	p := &Parser{
		vocab:  vocab,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// cueTarget tells the clause scanner how to convert a captured value.
type cueTarget int

const (
	cueVocab cueTarget = iota + 1 // value resolves through the vocabulary
	cueYearIn
	cueYearAfter
	cueYearBefore
	cueRatingMin
)

// cuePattern is one recognizer in the ordered cue-phrase list.
// Numeric patterns run before the name patterns because the name patterns
// capture to the end of the clause.
type cuePattern struct {
	re     *regexp.Regexp
	target cueTarget
	kind   core.FilterKind
}

var cuePatterns = []cuePattern{
	{regexp.MustCompile(`(?i)\bafter\s+(\d{4})\b`), cueYearAfter, core.FilterYearRange},
	{regexp.MustCompile(`(?i)\bbefore\s+(\d{4})\b`), cueYearBefore, core.FilterYearRange},
	{regexp.MustCompile(`(?i)\bin\s+(\d{4})\b`), cueYearIn, core.FilterYear},
	{regexp.MustCompile(`(?i)\brat(?:ing|ed)\s+(?:above|over|at least)\s+(\d+(?:\.\d+)?)\b`), cueRatingMin, core.FilterRatingMin},
	{regexp.MustCompile(`(?i)\b(?:starring|acted by|featuring)\s+(.+)$`), cueVocab, core.FilterPerson},
	{regexp.MustCompile(`(?i)\b(?:directed by|by director)\s+(.+)$`), cueVocab, core.FilterPerson},
	{regexp.MustCompile(`(?i)\b(?:produced by|distributed by|production)\s+(.+)$`), cueVocab, core.FilterCompany},
	{regexp.MustCompile(`(?i)\b(?:genre is|genre in|type is)\s+(.+)$`), cueVocab, core.FilterGenre},
}

// betweenRe is handled before connector splitting: the "and" inside the
// phrase is part of the cue, not a clause separator.
var betweenRe = regexp.MustCompile(`(?i)\bbetween\s+(\d{4})\s+and\s+(\d{4})\b`)

// connectorRe splits a query into flat clauses. No nesting: a single AND
// across all discovered clauses.
var connectorRe = regexp.MustCompile(`(?i)\s+and\s+`)

// genreNounRe recognizes the bare "<genre> movie" form.
var genreNounRe = regexp.MustCompile(`(?i)\b([a-zA-Z-]+(?:\s+[a-zA-Z-]+)?)\s+(?:movies?|films?)\b`)

// Parse interprets raw query text.
//
// Guarantees:
//   - a query with no recognized cue phrase parses to an empty FilterSet
//     with Semantic equal to the trimmed raw text
//   - a query that is nothing but cue phrases parses to an empty Semantic
//   - a cue value unknown to the vocabulary is consumed without producing
//     a filter (the caller sees an empty parse, not an error)
func (p *Parser) Parse(ctx context.Context, raw string) (core.ParsedQuery, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return core.ParsedQuery{}, ErrEmptyQuery
	}

	filters := core.FilterSet{}
	text, recognized := extractBetween(trimmed, filters)

	var residuals []string
	for _, clause := range connectorRe.Split(text, -1) {
		residual, clauseRecognized := p.parseClause(ctx, clause, filters)
		recognized = recognized || clauseRecognized
		if residual != "" {
			residuals = append(residuals, residual)
		}
	}

	semantic := strings.Join(residuals, " ")
	if !recognized {
		// Identity: untouched queries keep their exact wording,
		// connectors included.
		semantic = trimmed
	}

	return core.ParsedQuery{
		Raw:      raw,
		Filters:  filters,
		Semantic: semantic,
	}, nil
}

// parseClause runs the ordered cue-pattern list once over a single clause.
// Recognized phrases are removed; whatever remains is semantic residue.
func (p *Parser) parseClause(ctx context.Context, clause string, filters core.FilterSet) (string, bool) {
	text := clause
	recognized := false

	for _, cue := range cuePatterns {
		loc := cue.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		recognized = true
		value := text[loc[2]:loc[3]]

		switch cue.target {
		case cueYearIn:
			filters.Add(core.FilterYear, value)
		case cueYearAfter:
			year, _ := strconv.Atoi(value)
			filters.Add(core.FilterYearRange, fmt.Sprintf("%d-", year+1))
		case cueYearBefore:
			year, _ := strconv.Atoi(value)
			filters.Add(core.FilterYearRange, fmt.Sprintf("-%d", year-1))
		case cueRatingMin:
			filters.Add(core.FilterRatingMin, value)
		case cueVocab:
			p.addVocabFilters(ctx, cue.kind, value, filters)
		}

		text = strings.TrimSpace(text[:loc[0]] + " " + text[loc[1]:])
	}

	text, nounRecognized := p.extractGenreNoun(ctx, text, filters)
	return tidyResidual(text), recognized || nounRecognized
}

// addVocabFilters resolves a captured cue value through the vocabulary and
// records every canonical match. An unknown value leaves the filter absent;
// a vocabulary failure is absorbed the same way.
func (p *Parser) addVocabFilters(ctx context.Context, kind core.FilterKind, value string, filters core.FilterSet) {
	matches, err := p.vocab.Match(ctx, kind, value)
	if err != nil {
		p.logger.Warn("vocabulary lookup failed", "kind", kind, "value", value, "err", err)
		return
	}
	if len(matches) == 0 {
		p.logger.Debug("cue value unknown to index", "kind", kind, "value", value)
		return
	}
	for _, m := range matches {
		filters.Add(kind, m)
	}
}

// extractGenreNoun recognizes "<genre> movie" once per clause. The genre
// word must match a known genre exactly (after normalization); substring
// tiers are too loose for single nouns.
func (p *Parser) extractGenreNoun(ctx context.Context, text string, filters core.FilterSet) (string, bool) {
	loc := genreNounRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}

	candidate := text[loc[2]:loc[3]]
	words := strings.Fields(candidate)

	tries := []string{candidate}
	if len(words) == 2 {
		tries = append(tries, words[1])
	}

	for i, try := range tries {
		match, ok := p.exactGenre(ctx, try)
		if !ok {
			continue
		}
		filters.Add(core.FilterGenre, match)

		// Cut only the words that matched plus the noun itself.
		start := loc[2]
		if i == 1 {
			start += len(words[0]) + 1
		}
		return strings.TrimSpace(text[:start] + " " + text[loc[1]:]), true
	}

	return text, false
}

func (p *Parser) exactGenre(ctx context.Context, candidate string) (string, bool) {
	matches, err := p.vocab.Match(ctx, core.FilterGenre, candidate)
	if err != nil || len(matches) == 0 {
		return "", false
	}
	want := normalizeTerm(candidate)
	for _, m := range matches {
		if normalizeTerm(m) == want {
			return m, true
		}
	}
	return "", false
}

// extractBetween pulls every "between <year> and <year>" phrase out of the
// raw text before connector splitting.
func extractBetween(text string, filters core.FilterSet) (string, bool) {
	recognized := false
	for {
		loc := betweenRe.FindStringSubmatchIndex(text)
		if loc == nil {
			return text, recognized
		}
		recognized = true
		filters.Add(core.FilterYearRange, text[loc[2]:loc[3]]+"-"+text[loc[4]:loc[5]])
		text = strings.TrimSpace(text[:loc[0]] + " " + text[loc[1]:])
	}
}

// tidyResidual normalizes leftover clause text: collapsed whitespace,
// stray edge punctuation removed.
func tidyResidual(text string) string {
	return strings.Trim(strings.Join(strings.Fields(text), " "), " ,.;:")
}
