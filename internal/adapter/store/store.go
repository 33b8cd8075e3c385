// Package store is the record store adapter: named collections of JSON
// documents with a read-all/write-all/append/update/delete contract, behind a
// store-wide serializing gate. Backends: flat JSON files and Postgres.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"canteen/internal/app/core"

	"github.com/google/uuid"
)

type Collection string

const (
	Users  Collection = "users"
	Shops  Collection = "shops"
	Items  Collection = "items"
	Orders Collection = "orders"
)

// Backend is the raw per-collection document contract. Implementations do no
// locking of their own; Store serializes access.
type Backend interface {
	ReadAll(ctx context.Context, c Collection) ([]json.RawMessage, error)
	WriteAll(ctx context.Context, c Collection, docs []json.RawMessage) error
	Append(ctx context.Context, c Collection, id string, doc json.RawMessage) error
	UpdateByID(ctx context.Context, c Collection, id string, doc json.RawMessage) (bool, error)
	DeleteByID(ctx context.Context, c Collection, id string) (bool, error)
	Close(ctx context.Context) error
}

// Store wraps a backend with a single RWMutex. Every mutation runs inside
// Update, so multi-step protocols (token scan, stock write, order write) are
// atomic with respect to each other; Views run shared. The gate is in-process
// only: multi-process deployment is out of scope.
type Store struct {
	mu sync.RWMutex
	b  Backend
}

func New(b Backend) *Store {
	return &Store{b: b}
}

// Tx gives the callback raw backend access while the store lock is held. It
// must not escape the callback.
type Tx struct {
	b Backend
}

// View runs fn under the shared lock.
func (s *Store) View(fn func(tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(Tx{b: s.b})
}

// Update runs fn under the exclusive lock.
func (s *Store) Update(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(Tx{b: s.b})
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Close(ctx)
}

// All reads and decodes every record of a collection.
func All[T any](ctx context.Context, tx Tx, c Collection) ([]T, error) {
	docs, err := tx.b.ReadAll(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrStoreFailure, c, err)
	}
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("%w: decode %s record: %v", core.ErrStoreFailure, c, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReplaceAll rewrites a collection with the given records.
func ReplaceAll[T any](ctx context.Context, tx Tx, c Collection, records []T) error {
	docs := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: encode %s record: %v", core.ErrStoreFailure, c, err)
		}
		docs = append(docs, doc)
	}
	if err := tx.b.WriteAll(ctx, c, docs); err != nil {
		return fmt.Errorf("%w: write %s: %v", core.ErrStoreFailure, c, err)
	}
	return nil
}

// Append adds one record to the end of a collection.
func Append[T any](ctx context.Context, tx Tx, c Collection, id string, rec T) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s record: %v", core.ErrStoreFailure, c, err)
	}
	if err := tx.b.Append(ctx, c, id, doc); err != nil {
		return fmt.Errorf("%w: append %s: %v", core.ErrStoreFailure, c, err)
	}
	return nil
}

// UpdateByID replaces the record with the given id. It reports whether a
// record was found.
func UpdateByID[T any](ctx context.Context, tx Tx, c Collection, id string, rec T) (bool, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("%w: encode %s record: %v", core.ErrStoreFailure, c, err)
	}
	found, err := tx.b.UpdateByID(ctx, c, id, doc)
	if err != nil {
		return false, fmt.Errorf("%w: update %s: %v", core.ErrStoreFailure, c, err)
	}
	return found, nil
}

// DeleteByID removes the record with the given id, reporting whether it
// existed.
func DeleteByID(ctx context.Context, tx Tx, c Collection, id string) (bool, error) {
	found, err := tx.b.DeleteByID(ctx, c, id)
	if err != nil {
		return false, fmt.Errorf("%w: delete %s: %v", core.ErrStoreFailure, c, err)
	}
	return found, nil
}

// NewID mints a prefixed record id, e.g. "order_4f9d...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
