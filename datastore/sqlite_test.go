package datastore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	if err := store.InitSchema(); err != nil {
		t.Fatalf("Failed to initialize test schema: %v", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil && !errors.Is(err, ErrClosed) {
			t.Logf("Failed to close test store: %v", err)
		}
	}

	return store, cleanup
}

func TestSQLiteStore_InsertAndGetRow(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	id, err := store.InsertRow("movies", Row{"title": "Alpha", "year": int64(1999)})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), id)

	row, err := store.GetRow("movies", id)
	assert.NoError(t, err)
	assert.Equal(t, "Alpha", row["title"])
	assert.Equal(t, int64(1999), row["year"])
	assert.Nil(t, row["rating"])
}

func TestSQLiteStore_GetRow_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetRow("movies", 999)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_UpdateColumn(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	id, err := store.InsertRow("movies", Row{"title": "Alpha"})
	assert.NoError(t, err)

	err = store.UpdateColumn("movies", id, "rating", 7.9)
	assert.NoError(t, err)

	row, err := store.GetRow("movies", id)
	assert.NoError(t, err)
	assert.Equal(t, 7.9, row["rating"])

	// Clearing a column writes the absent marker
	err = store.UpdateColumn("movies", id, "rating", nil)
	assert.NoError(t, err)

	row, err = store.GetRow("movies", id)
	assert.NoError(t, err)
	assert.Nil(t, row["rating"])
}

func TestSQLiteStore_UpdateColumn_RowNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.UpdateColumn("movies", 999, "title", "Beta")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_UpdateColumn_ColumnNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	id, err := store.InsertRow("movies", Row{"title": "Alpha"})
	assert.NoError(t, err)

	err = store.UpdateColumn("movies", id, "nonexistent", "value")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DeleteRow(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	id, err := store.InsertRow("movies", Row{"title": "Alpha"})
	assert.NoError(t, err)

	err = store.DeleteRow("movies", id)
	assert.NoError(t, err)

	_, err = store.GetRow("movies", id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteRow("movies", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListAndFindIDs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := store.InsertRow("movies", Row{"title": title})
		assert.NoError(t, err)
	}
	for _, movieID := range []int64{1, 1, 2} {
		_, err := store.InsertRow("media_files", Row{"path": "/x", "movie_id": movieID})
		assert.NoError(t, err)
	}

	ids, err := store.ListIDs("movies")
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = store.FindIDs("media_files", "movie_id", int64(1))
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	ids, err = store.FindIDs("media_files", "movie_id", int64(3))
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSQLiteStore_Closed(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.Close()
	assert.NoError(t, err)

	_, err = store.GetRow("movies", 1)
	assert.ErrorIs(t, err, ErrClosed)

	err = store.UpdateColumn("movies", 1, "title", "x")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = store.InsertRow("movies", Row{"title": "x"})
	assert.ErrorIs(t, err, ErrClosed)

	err = store.DeleteRow("movies", 1)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = store.ListIDs("movies")
	assert.ErrorIs(t, err, ErrClosed)

	err = store.Close()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSQLiteStore_InvalidIdentifier(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetRow("movies; DROP TABLE movies", 1)
	assert.Error(t, err)

	err = store.UpdateColumn("movies", 1, "title = 'x' --", "y")
	assert.Error(t, err)
}
