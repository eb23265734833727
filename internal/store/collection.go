package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Collection is one JSON array file. Every load-modify-save cycle runs
// under the collection's mutex, so concurrent writers to the same
// collection serialize instead of dropping each other's updates.
// Different collections never contend.
type Collection struct {
	def  Definition
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

func newCollection(dir string, def Definition, log *slog.Logger) *Collection {
	return &Collection{
		def:  def,
		path: filepath.Join(dir, def.File),
		log:  log,
	}
}

func (c *Collection) Name() string { return c.def.Name }

// Load returns the full persisted sequence. A missing, empty or corrupt
// file is healed in place: an empty array is written back and returned.
// Any other I/O failure propagates.
func (c *Collection) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Save overwrites the persisted sequence with records.
func (c *Collection) Save(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(records)
}

// List returns all records with secret fields stripped.
func (c *Collection) List(ctx context.Context) ([]Record, error) {
	records, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, c.sanitize(rec))
	}
	return out, nil
}

// Find returns the first record matching pred, unsanitized. Callers that
// pass records on must strip secret fields themselves.
func (c *Collection) Find(ctx context.Context, pred func(Record) bool) (Record, bool, error) {
	records, err := c.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, rec := range records {
		if pred(rec) {
			return rec, true, nil
		}
	}
	return nil, false, nil
}

// Insert assigns the next id, applies the definition's defaults, filters
// the partial down to declared fields, appends and persists. The stored
// record is returned with secret fields stripped.
func (c *Collection) Insert(ctx context.Context, partial Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return nil, err
	}

	rec := Record{"id": c.NextID(records)}
	for _, field := range c.def.Fields {
		if v, ok := partial[field]; ok {
			rec[field] = v
		}
	}
	for field, v := range c.def.Defaults {
		if cur, ok := rec[field]; !ok || cur == "" || cur == nil {
			rec[field] = v
		}
	}

	records = append(records, rec)
	if err := c.save(records); err != nil {
		return nil, err
	}
	return c.sanitize(rec), nil
}

// Update shallow-merges the declared fields of partial over the record
// with the given id. The id itself is immutable. ErrNotFound is returned
// without touching the file when no record matches.
func (c *Collection) Update(ctx context.Context, id int, partial Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, rec := range records {
		if RecordID(rec) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	merged := make(Record, len(records[idx])+len(partial))
	for k, v := range records[idx] {
		merged[k] = v
	}
	for _, field := range c.def.Fields {
		if v, ok := partial[field]; ok {
			merged[field] = v
		}
	}
	merged["id"] = id

	records[idx] = merged
	if err := c.save(records); err != nil {
		return nil, err
	}
	return c.sanitize(merged), nil
}

// Delete removes the record with the given id and persists. ErrNotFound
// is returned without touching the file when nothing matched.
func (c *Collection) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if RecordID(rec) != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return ErrNotFound
	}
	return c.save(kept)
}

// Mutate runs fn on the loaded sequence and persists whatever it
// returns, all under the collection lock. fn returning an error aborts
// without writing. Used by flows that need a check and a write in one
// cycle (duplicate email on signup, password rotation).
func (c *Collection) Mutate(ctx context.Context, fn func([]Record) ([]Record, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return c.save(updated)
}

// NextID returns max(id)+1 over records, or the collection floor when
// the sequence is empty.
func (c *Collection) NextID(records []Record) int {
	if len(records) == 0 {
		return c.def.IDFloor
	}
	max := 0
	for _, rec := range records {
		if id := RecordID(rec); id > max {
			max = id
		}
	}
	return max + 1
}

// sanitize returns a copy of rec without the definition's secret fields.
func (c *Collection) sanitize(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	for _, field := range c.def.Secret {
		delete(out, field)
	}
	return out
}

func (c *Collection) load() ([]Record, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		c.log.Warn("collection file missing, initializing empty",
			slog.String("collection", c.def.Name))
		if err := c.save(nil); err != nil {
			return nil, err
		}
		return []Record{}, nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		c.log.Warn("collection file empty, initializing empty",
			slog.String("collection", c.def.Name))
		if err := c.save(nil); err != nil {
			return nil, err
		}
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		c.log.Warn("collection file corrupt, resetting to empty",
			slog.String("collection", c.def.Name),
			slog.String("error", err.Error()))
		if err := c.save(nil); err != nil {
			return nil, err
		}
		return []Record{}, nil
	}
	return records, nil
}

func (c *Collection) save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
