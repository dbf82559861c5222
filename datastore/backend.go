package datastore

import (
	"fmt"
	"sort"
)

// SourceType distinguishes file-backed stores from database servers.
type SourceType string

// Source type constants
const (
	FileDataSource     SourceType = "file"
	DataBaseDataSource SourceType = "database"
)

// ConnectionInfo describes a database-server backend.
type ConnectionInfo struct {
	ConnectionString string
	User             string
	Password         string
}

// Factory creates column stores for one storage backend. Backends are
// registered explicitly by the host at startup; the core never performs
// discovery itself.
type Factory interface {
	// Name is the backend's display name.
	Name() string
	// Icon names the backend's display icon.
	Icon() string
	// Type reports whether the backend opens files or server connections.
	Type() SourceType
	// FileExtension is the backend's file extension, empty for database
	// backends.
	FileExtension() string
	// OpenFile opens or creates a file-backed store.
	OpenFile(path string) (ColumnStore, error)
	// OpenConnection opens a database-server store.
	OpenConnection(info ConnectionInfo) (ColumnStore, error)
}

var factories = make(map[string]Factory)

// Register adds a backend factory under its display name. Registering the
// same name twice replaces the earlier factory.
func Register(f Factory) {
	factories[f.Name()] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("storage backend %q: %w", name, ErrNotFound)
	}
	return f, nil
}

// Factories lists the registered backends in name order.
func Factories() []Factory {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]Factory, len(names))
	for i, name := range names {
		list[i] = factories[name]
	}
	return list
}

// SQLiteFactory is the built-in file backend.
type SQLiteFactory struct{}

// Name implements Factory.
func (SQLiteFactory) Name() string { return "SQLite" }

// Icon implements Factory.
func (SQLiteFactory) Icon() string { return "sqlite" }

// Type implements Factory.
func (SQLiteFactory) Type() SourceType { return FileDataSource }

// FileExtension implements Factory.
func (SQLiteFactory) FileExtension() string { return ".mcdb" }

// OpenFile opens or creates a SQLite catalogue file and ensures its schema.
func (SQLiteFactory) OpenFile(path string) (ColumnStore, error) {
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// OpenConnection implements Factory; SQLite is file-only.
func (SQLiteFactory) OpenConnection(ConnectionInfo) (ColumnStore, error) {
	return nil, fmt.Errorf("sqlite backend does not support server connections")
}
