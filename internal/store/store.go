package store

import (
	"errors"
	"log/slog"
	"os"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Record is one row of a collection. Collections are schemaless on disk
// (plain JSON arrays of objects), so records stay maps and ids are
// coerced through RecordID.
type Record map[string]any

// Definition describes one named collection: where it lives, how ids are
// seeded, which fields generic writes may touch and which fields must
// never leave the store.
type Definition struct {
	// Name is the resource name clients use (e.g. "bookings").
	Name string
	// File is the file name inside the store directory.
	File string
	// IDFloor is the id assigned to the first record of an empty
	// collection. Users historically start at 101, everything else at 1.
	IDFloor int
	// Fields lists the attributes callers may set or merge. Anything
	// else in a payload is dropped before it reaches disk.
	Fields []string
	// Secret lists attributes stripped from every record the store
	// hands back.
	Secret []string
	// Defaults are applied to new records when the caller left the
	// field unset.
	Defaults Record
}

// Store owns a directory of JSON collection files.
type Store struct {
	dir  string
	log  *slog.Logger
	cols map[string]*Collection
}

func Open(dir string, log *slog.Logger, defs ...Definition) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		dir:  dir,
		log:  log,
		cols: make(map[string]*Collection, len(defs)),
	}
	for _, def := range defs {
		s.cols[def.Name] = newCollection(dir, def, log)
	}
	return s, nil
}

// Collection resolves a resource name. The second return is false for
// anything outside the configured set.
func (s *Store) Collection(name string) (*Collection, bool) {
	col, ok := s.cols[name]
	return col, ok
}

// RecordID extracts the integer id of a record. JSON numbers decode as
// float64, so both forms are accepted.
func RecordID(rec Record) int {
	switch v := rec["id"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
