package datastore

import (
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import sqlite3 driver
)

// SQLiteStore implements ColumnStore over a SQLite database file (or
// ":memory:" for tests).
type SQLiteStore struct {
	db     *sql.DB
	closed bool
}

// NewSQLiteStore opens a SQLite-backed column store.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// InitSchema creates the catalogue tables.
func (s *SQLiteStore) InitSchema() error {
	if s.closed {
		return ErrClosed
	}

	schema := `
	CREATE TABLE IF NOT EXISTS movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		original_title TEXT,
		year INTEGER,
		url TEXT,
		country TEXT,
		plot TEXT,
		rating REAL,
		cover TEXT,
		media_file INTEGER
	);

	CREATE TABLE IF NOT EXISTS persons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		role TEXT,
		picture TEXT
	);

	CREATE TABLE IF NOT EXISTS genres (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS movie_directors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS movie_cast (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS movie_genres (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id INTEGER NOT NULL,
		genre_id INTEGER NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS media_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id INTEGER,
		position INTEGER,
		path TEXT NOT NULL,
		size INTEGER
	);

	CREATE TABLE IF NOT EXISTS video_properties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER,
		duration INTEGER,
		width INTEGER,
		height INTEGER,
		format TEXT,
		encoding TEXT,
		bitrate INTEGER
	);

	CREATE TABLE IF NOT EXISTS audio_properties (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id INTEGER,
		position INTEGER,
		format TEXT,
		bitrate INTEGER,
		channels INTEGER,
		encoding TEXT,
		language TEXT
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_movie_settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		position INTEGER,
		movie_id INTEGER NOT NULL,
		seen INTEGER,
		rating REAL,
		comment TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_movie_directors_movie_id ON movie_directors(movie_id);
	CREATE INDEX IF NOT EXISTS idx_movie_cast_movie_id ON movie_cast(movie_id);
	CREATE INDEX IF NOT EXISTS idx_movie_genres_movie_id ON movie_genres(movie_id);
	CREATE INDEX IF NOT EXISTS idx_media_files_movie_id ON media_files(movie_id);
	CREATE INDEX IF NOT EXISTS idx_video_properties_file_id ON video_properties(file_id);
	CREATE INDEX IF NOT EXISTS idx_audio_properties_file_id ON audio_properties(file_id);
	CREATE INDEX IF NOT EXISTS idx_user_movie_settings_user_id ON user_movie_settings(user_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// checkIdent guards table and column names interpolated into SQL. Names come
// from package-level constants, so a failure here is a programming error.
func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// GetRow retrieves all columns of a single row.
func (s *SQLiteStore) GetRow(table string, id int64) (Row, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(fmt.Sprintf("SELECT * FROM %s WHERE id = ?", table), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read row %d of %s: %w", id, table, err)
		}
		return nil, fmt.Errorf("row %d in %s: %w", id, table, ErrNotFound)
	}

	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}
	if err := rows.Scan(scanTargets...); err != nil {
		return nil, fmt.Errorf("failed to scan row %d of %s: %w", id, table, err)
	}

	row := make(Row, len(columns))
	for i, column := range columns {
		row[column] = values[i]
	}
	return row, nil
}

// UpdateColumn writes a single column of a single row.
func (s *SQLiteStore) UpdateColumn(table string, id int64, column string, value any) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkIdent(table); err != nil {
		return err
	}
	if err := checkIdent(column); err != nil {
		return err
	}

	result, err := s.db.Exec(fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column), value, id)
	if err != nil {
		if strings.Contains(err.Error(), "no such column") {
			return fmt.Errorf("column %s in %s: %w", column, table, ErrNotFound)
		}
		return fmt.Errorf("failed to update %s.%s: %w", table, column, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", table, column, err)
	}
	if affected == 0 {
		return fmt.Errorf("row %d in %s: %w", id, table, ErrNotFound)
	}
	return nil
}

// InsertRow inserts a new row and returns the store-assigned id.
func (s *SQLiteStore) InsertRow(table string, values Row) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if err := checkIdent(table); err != nil {
		return 0, err
	}

	columns := make([]string, 0, len(values))
	for column := range values {
		if err := checkIdent(column); err != nil {
			return 0, err
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		placeholders[i] = "?"
		args[i] = values[column]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if len(columns) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	}

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// DeleteRow removes a single row.
func (s *SQLiteStore) DeleteRow(table string, id int64) error {
	if s.closed {
		return ErrClosed
	}
	if err := checkIdent(table); err != nil {
		return err
	}

	result, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if affected == 0 {
		return fmt.Errorf("row %d in %s: %w", id, table, ErrNotFound)
	}
	return nil
}

// ListIDs enumerates every row id in a table.
func (s *SQLiteStore) ListIDs(table string) ([]int64, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	return s.queryIDs(fmt.Sprintf("SELECT id FROM %s ORDER BY rowid", table))
}

// FindIDs enumerates the ids of rows whose column equals value.
func (s *SQLiteStore) FindIDs(table string, column string, value any) ([]int64, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	if err := checkIdent(column); err != nil {
		return nil, err
	}
	return s.queryIDs(fmt.Sprintf("SELECT id FROM %s WHERE %s = ? ORDER BY rowid", table, column), value)
}

func (s *SQLiteStore) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return ids, nil
}

// Close releases the database handle. Further calls fail with ErrClosed.
func (s *SQLiteStore) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return s.db.Close()
}
