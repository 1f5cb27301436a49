package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cinefind/cinefind/core"
)

// Key prefixes for different data types. Every prefix includes the trailing
// separator so prefix iteration never bleeds into a neighbouring keyspace.
const (
	movieRecordPrefix = "movrec:"
	attributePrefix   = "movattr:"
	indexBuiltKey     = "movmeta:built"
)

// attrKindName maps a filter kind to the keyspace it reads. Year and
// year-range filters share one index, as do rating filters.
func attrKindName(kind core.FilterKind) string {
	switch kind {
	case core.FilterYear, core.FilterYearRange:
		return "year"
	case core.FilterRatingMin:
		return "rating"
	default:
		return kind.String()
	}
}

// makeMovieRecordKey generates a key for a movie record by ID.
func makeMovieRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", movieRecordPrefix, id))
}

// makeAttrEntryKey generates a composite key for one attribute-index entry.
// Format: prefix + kind + ":" + normalized value + NUL + 8-byte BigEndian ID.
// The NUL separator keeps value boundaries unambiguous and the BigEndian
// suffix keeps entries for one value sorted by ID.
func makeAttrEntryKey(kind core.FilterKind, value string, id core.ID) []byte {
	prefix := makeAttrValuePrefix(kind, value)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeAttrValuePrefix generates the iteration prefix for all entries of one
// (kind, value) pair.
func makeAttrValuePrefix(kind core.FilterKind, value string) []byte {
	return []byte(attributePrefix + attrKindName(kind) + ":" + normalizeAttrValue(value) + "\x00")
}

// makeAttrKindPrefix generates the iteration prefix for all entries of one kind.
func makeAttrKindPrefix(kind core.FilterKind) []byte {
	return []byte(attributePrefix + attrKindName(kind) + ":")
}

// splitAttrEntryKey extracts the normalized value and the record ID from an
// attribute entry key. Returns ok=false for malformed keys.
func splitAttrEntryKey(key, kindPrefix []byte) (value string, id core.ID, ok bool) {
	rest := key[len(kindPrefix):]
	sep := strings.IndexByte(string(rest), 0)
	if sep < 0 || len(rest) != sep+1+8 {
		return "", 0, false
	}
	return string(rest[:sep]), core.ID(binary.BigEndian.Uint64(rest[sep+1:])), true
}

// normalizeAttrValue canonicalizes an attribute value for indexing:
// lowercased, trimmed, internal runs of whitespace collapsed.
func normalizeAttrValue(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// makeRatingValue renders a rating as a fixed-width key segment so that
// lexicographic order matches numeric order ("07.5" < "10.0").
func makeRatingValue(rating float64) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 10 {
		rating = 10
	}
	return fmt.Sprintf("%04.1f", rating)
}

// makeYearValue renders a release year as a fixed-width key segment.
func makeYearValue(year int) string {
	return fmt.Sprintf("%04d", year)
}
