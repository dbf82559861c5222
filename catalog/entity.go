package catalog

import (
	"math"

	"golang.org/x/text/language"

	"github.com/chrfin/MovieCollection-sub001/datastore"
)

// entity is the shared core of every wrapper: the row identity, the owning
// data source and the property-changed notifier. The wrapper caches its
// fields in memory after construction and is the single source of truth for
// them; reads never touch the store again.
type entity struct {
	notifier

	id    int64
	table string
	ds    *DataSource
	owner any
}

// ID returns the store-assigned row id. Ids are immutable and are the sole
// key used for equality and lookup.
func (e *entity) ID() int64 { return e.id }

// setColumn is the write-through path every setter funnels through: push the
// encoded value to the store, and only on success update the cache (apply)
// and notify observers. A failed write leaves the cache untouched, so cache
// and store can never diverge.
func (e *entity) setColumn(field, column string, value any, apply func()) error {
	if err := e.ds.store.UpdateColumn(e.table, e.id, column, value); err != nil {
		return err
	}
	apply()
	e.raise(e.owner, field)
	return nil
}

// Column encoders. The store's absent marker is SQL NULL; nil pointers
// encode to it and it decodes back to nil, never to a zero value. String
// fields store "" as a present value ("unset" is a display convention only).

func encodeString(v string) any { return v }

func encodeIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func encodeInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func encodeFloat64Ptr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func encodeBoolPtr(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

func decodeString(raw any) string {
	if v := datastore.AsString(raw); v != nil {
		return *v
	}
	return ""
}

// roundRating normalizes a rating to one decimal place. Applied before the
// store write so store and cache always hold the same value.
func roundRating(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}

// invariantLanguage is the stored code of the invariant culture; it decodes
// to absent, not to a language.
const invariantLanguage = "iv"

func encodeLanguage(v *language.Tag) any {
	if v == nil {
		return nil
	}
	base, _ := v.Base()
	return base.String()
}

func decodeLanguage(raw any) *language.Tag {
	code := datastore.AsString(raw)
	if code == nil || *code == "" || *code == invariantLanguage || *code == "und" {
		return nil
	}
	tag, err := language.Parse(*code)
	if err != nil {
		return nil
	}
	return &tag
}

func intPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func int64Ptr(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func float64Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func boolPtr(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
