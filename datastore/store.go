// Package datastore provides the generic column store the catalogue is
// persisted into: a row/column accessor contract, a SQLite implementation,
// typed coercion helpers for raw column values, and the backend factory
// registry the host selects a storage backend from.
package datastore

// Row maps column names to raw stored values. Raw values are whatever the
// driver produced: nil, int64, float64, string or []byte.
type Row map[string]any

// ColumnStore is the contract every storage backend must satisfy. Each call
// is independently durable; no multi-column or multi-row transaction is
// provided, so callers must not rely on one.
type ColumnStore interface {
	// GetRow returns the full row with the given id, or ErrNotFound.
	GetRow(table string, id int64) (Row, error)

	// UpdateColumn writes a single column of a single row. Returns
	// ErrNotFound if the row or column does not exist.
	UpdateColumn(table string, id int64, column string, value any) error

	// InsertRow inserts a new row with the given initial values and
	// returns the store-assigned id.
	InsertRow(table string, values Row) (int64, error)

	// DeleteRow removes the row with the given id, or returns ErrNotFound.
	DeleteRow(table string, id int64) error

	// ListIDs enumerates every row id in a table, in rowid order.
	ListIDs(table string) ([]int64, error)

	// FindIDs enumerates the ids of rows whose column equals value, in
	// rowid order. The store defines no ordering contract beyond row
	// identity; callers needing insertion order keep their own position
	// column and sort by it.
	FindIDs(table string, column string, value any) ([]int64, error)

	// Close releases the underlying handle. Every call after Close fails
	// with ErrClosed.
	Close() error
}
