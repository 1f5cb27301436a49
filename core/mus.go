package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the records persisted in the corpus store.
// The record set is small and static, so the serializers are composed by
// hand from mus-go primitives instead of being generated.

var (
	// IDMUS serializes ID values.
	IDMUS = idMUS{}

	// MovieRecordMUS serializes MovieRecord values.
	MovieRecordMUS = movieRecordMUS{}

	strSliceMUS = ord.NewSliceSer[string](ord.String)
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type movieRecordMUS struct{}

func (s movieRecordMUS) Marshal(v MovieRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Overview, bs[n:])
	n += varint.Int.Marshal(v.Year, bs[n:])
	n += strSliceMUS.Marshal(v.Genres, bs[n:])
	n += strSliceMUS.Marshal(v.Cast, bs[n:])
	n += strSliceMUS.Marshal(v.Directors, bs[n:])
	n += strSliceMUS.Marshal(v.Companies, bs[n:])
	n += raw.Float64.Marshal(v.Rating, bs[n:])
	n += raw.Float64.Marshal(v.Popularity, bs[n:])
	n += varint.Int.Marshal(v.Runtime, bs[n:])
	return n + vectorMUS.Marshal(v.Vector, bs[n:])
}

func (s movieRecordMUS) Unmarshal(bs []byte) (v MovieRecord, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Overview, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Year, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Genres, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Cast, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Directors, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Companies, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Rating, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Popularity, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Runtime, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	return v, n + n1, err
}

func (s movieRecordMUS) Size(v MovieRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Overview)
	size += varint.Int.Size(v.Year)
	size += strSliceMUS.Size(v.Genres)
	size += strSliceMUS.Size(v.Cast)
	size += strSliceMUS.Size(v.Directors)
	size += strSliceMUS.Size(v.Companies)
	size += raw.Float64.Size(v.Rating)
	size += raw.Float64.Size(v.Popularity)
	size += varint.Int.Size(v.Runtime)
	return size + vectorMUS.Size(v.Vector)
}

func (s movieRecordMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	skippers := []func([]byte) (int, error){
		IDMUS.Skip,
		ord.String.Skip,
		ord.String.Skip,
		varint.Int.Skip,
		strSliceMUS.Skip,
		strSliceMUS.Skip,
		strSliceMUS.Skip,
		strSliceMUS.Skip,
		raw.Float64.Skip,
		raw.Float64.Skip,
		varint.Int.Skip,
		vectorMUS.Skip,
	}
	for _, skip := range skippers {
		if n1, err = skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}
