package badger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
)

// MovieRepository implements storage.MovieRepository for BadgerDB.
type MovieRepository struct {
	backend *Backend
}

var _ storage.MovieRepository = (*MovieRepository)(nil)

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(backend *Backend) (*MovieRepository, error) {
	return &MovieRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is closed separately.
func (r *MovieRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *MovieRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *MovieRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// AddMovies adds one or more movie records to storage together with their
// attribute-index entries, and marks the indexes built.
func (r *MovieRepository) AddMovies(ctx context.Context, records ...*core.MovieRecord) ([]*core.MovieRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateMovieRecord(record); err != nil {
				return err
			}

			if record.Id == 0 {
				record.Id = core.IDFromContent(fmt.Sprintf("%s (%d)", record.Title, record.Year))
			}

			key := makeMovieRecordKey(record.Id)
			value := storage.MarshalMovieRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if err := writeAttrEntries(tx, record); err != nil {
				return err
			}
		}

		if err := tx.Set([]byte(indexBuiltKey), []byte{1}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return records, err
}

// writeAttrEntries writes the inverted-index entries for one record.
// The entry value keeps the display casing so KnownValues can return it.
func writeAttrEntries(tx *badger.Txn, record *core.MovieRecord) error {
	set := func(kind core.FilterKind, indexValue, display string) error {
		if normalizeAttrValue(indexValue) == "" {
			return nil
		}
		return tx.Set(makeAttrEntryKey(kind, indexValue, record.Id), []byte(display))
	}

	for _, name := range record.Cast {
		if err := set(core.FilterPerson, name, name); err != nil {
			return err
		}
	}
	for _, name := range record.Directors {
		if err := set(core.FilterPerson, name, name); err != nil {
			return err
		}
	}
	for _, genre := range record.Genres {
		if err := set(core.FilterGenre, genre, genre); err != nil {
			return err
		}
	}
	for _, company := range record.Companies {
		if err := set(core.FilterCompany, company, company); err != nil {
			return err
		}
	}
	if core.IsValidYear(record.Year) {
		year := makeYearValue(record.Year)
		if err := set(core.FilterYear, year, year); err != nil {
			return err
		}
	}
	rating := makeRatingValue(record.Rating)
	return set(core.FilterRatingMin, rating, rating)
}

// GetMovie retrieves a single movie record by ID.
func (r *MovieRepository) GetMovie(ctx context.Context, id core.ID) (*core.MovieRecord, error) {
	var result *core.MovieRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readMovieRecord(tx, makeMovieRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetMovies retrieves multiple movie records by their IDs.
// Missing records are skipped without error.
func (r *MovieRepository) GetMovies(ctx context.Context, ids ...core.ID) ([]*core.MovieRecord, error) {
	results := make([]*core.MovieRecord, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := readMovieRecord(tx, makeMovieRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AllIDs returns the identifiers of every movie in the corpus, ascending.
func (r *MovieRepository) AllIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(movieRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			_, err := fmt.Sscanf(string(iter.Item().Key()), movieRecordPrefix+"%d", &id)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys sort lexicographically, not numerically.
	slices.Sort(ids)
	return ids, nil
}

// EmbeddingOf returns the precomputed embedding for a movie.
func (r *MovieRepository) EmbeddingOf(ctx context.Context, id core.ID) ([]float32, error) {
	record, err := r.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(record.Vector) == 0 {
		return nil, storage.ErrNoEmbedding
	}
	return record.Vector, nil
}

// readMovieRecord reads and decodes a record, returning nil when absent.
func readMovieRecord(tx *badger.Txn, key []byte) (*core.MovieRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.MovieRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalMovieRecord(val)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return record, nil
}
