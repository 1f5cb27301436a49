package badger

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
)

// AttributeIndex implements storage.AttributeIndex for BadgerDB.
// Entries are written by MovieRepository.AddMovies; this type only reads.
type AttributeIndex struct {
	backend *Backend
}

var _ storage.AttributeIndex = (*AttributeIndex)(nil)

// NewAttributeIndex creates a new AttributeIndex over the backend.
func NewAttributeIndex(backend *Backend) (*AttributeIndex, error) {
	return &AttributeIndex{backend: backend}, nil
}

// Lookup returns the identifiers of movies matching a (kind, value) constraint.
func (x *AttributeIndex) Lookup(ctx context.Context, kind core.FilterKind, value string) ([]core.ID, error) {
	if err := core.ValidateFilterKind(kind); err != nil {
		return nil, err
	}

	switch kind {
	case core.FilterYear:
		year, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, nil
		}
		return x.collectIDs(makeAttrValuePrefix(kind, makeYearValue(year)), kind, nil)

	case core.FilterYearRange:
		lo, hi, err := parseYearRange(value)
		if err != nil {
			return nil, nil
		}
		return x.collectIDs(makeAttrKindPrefix(kind), kind, func(indexed string) bool {
			year, err := strconv.Atoi(indexed)
			if err != nil {
				return false
			}
			return year >= lo && year <= hi
		})

	case core.FilterRatingMin:
		min, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, nil
		}
		return x.collectIDs(makeAttrKindPrefix(kind), kind, func(indexed string) bool {
			rating, err := strconv.ParseFloat(indexed, 64)
			if err != nil {
				return false
			}
			return rating >= min
		})

	default:
		return x.collectIDs(makeAttrValuePrefix(kind, value), kind, nil)
	}
}

// collectIDs iterates an attribute prefix and gathers matching record IDs,
// deduplicated and sorted ascending. The accept callback filters on the
// indexed value segment; nil accepts everything under the prefix.
func (x *AttributeIndex) collectIDs(prefix []byte, kind core.FilterKind, accept func(indexed string) bool) ([]core.ID, error) {
	kindPrefix := makeAttrKindPrefix(kind)
	seen := make(map[core.ID]bool)
	var ids []core.ID

	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			value, id, ok := splitAttrEntryKey(iter.Item().Key(), kindPrefix)
			if !ok {
				continue
			}
			if accept != nil && !accept(value) {
				continue
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}

// KnownValues returns the distinct indexed values for a kind in the display
// casing recorded at build time, sorted by their normalized form.
func (x *AttributeIndex) KnownValues(ctx context.Context, kind core.FilterKind) ([]string, error) {
	if err := core.ValidateFilterKind(kind); err != nil {
		return nil, err
	}

	kindPrefix := makeAttrKindPrefix(kind)
	seen := make(map[string]bool)
	var values []string

	err := x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = kindPrefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			normalized, _, ok := splitAttrEntryKey(item.Key(), kindPrefix)
			if !ok || seen[normalized] {
				continue
			}
			seen[normalized] = true

			err := item.Value(func(val []byte) error {
				if len(val) > 0 {
					values = append(values, string(val))
				} else {
					values = append(values, normalized)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Ready reports whether a load has ever populated this store.
func (x *AttributeIndex) Ready(ctx context.Context) (bool, error) {
	ready := false
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte(indexBuiltKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ready = true
		return nil
	}, false)
	return ready, err
}

// parseYearRange parses the "start-end" range form. Either bound may be
// omitted ("2001-" means on or after 2001).
func parseYearRange(value string) (lo, hi int, err error) {
	lo, hi = core.MinReleaseYear, core.MaxReleaseYear
	start, end, found := strings.Cut(strings.TrimSpace(value), "-")
	if !found {
		return 0, 0, fmt.Errorf("%w: year range %q", storage.ErrNotFound, value)
	}
	if s := strings.TrimSpace(start); s != "" {
		if lo, err = strconv.Atoi(s); err != nil {
			return 0, 0, err
		}
	}
	if s := strings.TrimSpace(end); s != "" {
		if hi, err = strconv.Atoi(s); err != nil {
			return 0, 0, err
		}
	}
	return lo, hi, nil
}
