package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/yourorg/csv-loader/internal/normalize"
)

// Badger is a local table kept in a badger database. Several tables can
// share one database; each lives under its own key prefix. Items are keyed
// by the text of a single key attribute.
type Badger struct {
	db      *badger.DB
	name    string
	keyAttr string
	owned   bool
}

// OpenBadger opens (or creates) a badger database at dir and returns the
// named table inside it. An empty dir opens an in-memory database.
func OpenBadger(dir, name, keyAttr string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	t, err := NewBadger(db, name, keyAttr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	t.owned = true
	return t, nil
}

// NewBadger wraps an already open database. The caller keeps ownership of db.
func NewBadger(db *badger.DB, name, keyAttr string) (*Badger, error) {
	if name == "" {
		return nil, errors.New("badger: table name required")
	}
	if keyAttr == "" {
		return nil, errors.New("badger: key attribute required")
	}
	return &Badger{db: db, name: name, keyAttr: keyAttr}, nil
}

func (b *Badger) Name() string { return b.name }

func (b *Badger) prefix() []byte { return []byte(b.name + "\x00") }

func (b *Badger) Put(ctx context.Context, rec normalize.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, ok := rec[b.keyAttr]
	if !ok || k.Kind() == normalize.KindList {
		return fmt.Errorf("%w: %s", ErrMissingKey, b.keyAttr)
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	key := append(b.prefix(), k.String()...)
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// Scan visits records in key order.
func (b *Badger) Scan(ctx context.Context, fn func(normalize.Record) error) error {
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.prefix()
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec normalize.Record
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %q: %w", it.Item().Key(), err)
			}
			if err := fn(rec); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrStopScan) {
		return nil
	}
	return err
}

// Close releases the database when the table opened it.
func (b *Badger) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}
