package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"canteen/internal/app/core"
)

type testRecord struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

func newTestBackend(t *testing.T) (*FileBackend, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	return backend, dir
}

func TestFileBackendMissingFileReadsEmpty(t *testing.T) {
	backend, _ := newTestBackend(t)

	docs, err := backend.ReadAll(context.Background(), Orders)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %d, want 0", len(docs))
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	backend, dir := newTestBackend(t)
	st := New(backend)
	ctx := context.Background()

	records := []testRecord{
		{ID: "rec_1", Value: "one"},
		{ID: "rec_2", Value: "two"},
	}
	err := st.Update(func(tx Tx) error {
		return ReplaceAll(ctx, tx, Orders, records)
	})
	if err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "orders.json")); err != nil {
		t.Fatalf("collection file: %v", err)
	}

	var got []testRecord
	err = st.View(func(tx Tx) error {
		var err error
		got, err = All[testRecord](ctx, tx, Orders)
		return err
	})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 2 || got[0].Value != "one" || got[1].Value != "two" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestFileBackendAppendUpdateDelete(t *testing.T) {
	backend, _ := newTestBackend(t)
	st := New(backend)
	ctx := context.Background()

	err := st.Update(func(tx Tx) error {
		if err := Append(ctx, tx, Users, "rec_1", testRecord{ID: "rec_1", Value: "one"}); err != nil {
			return err
		}
		return Append(ctx, tx, Users, "rec_2", testRecord{ID: "rec_2", Value: "two"})
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	err = st.Update(func(tx Tx) error {
		found, err := UpdateByID(ctx, tx, Users, "rec_1", testRecord{ID: "rec_1", Value: "changed"})
		if err != nil {
			return err
		}
		if !found {
			t.Error("UpdateByID did not find rec_1")
		}

		found, err = UpdateByID(ctx, tx, Users, "rec_ghost", testRecord{ID: "rec_ghost"})
		if err != nil {
			return err
		}
		if found {
			t.Error("UpdateByID found a record that does not exist")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}

	err = st.Update(func(tx Tx) error {
		found, err := DeleteByID(ctx, tx, Users, "rec_2")
		if err != nil {
			return err
		}
		if !found {
			t.Error("DeleteByID did not find rec_2")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}

	var got []testRecord
	err = st.View(func(tx Tx) error {
		var err error
		got, err = All[testRecord](ctx, tx, Users)
		return err
	})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 1 || got[0].Value != "changed" {
		t.Errorf("final records = %+v", got)
	}
}

func TestFileBackendCorruptFile(t *testing.T) {
	backend, dir := newTestBackend(t)
	st := New(backend)

	if err := os.WriteFile(filepath.Join(dir, "items.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	err := st.View(func(tx Tx) error {
		_, err := All[testRecord](context.Background(), tx, Items)
		return err
	})
	if !errors.Is(err, core.ErrStoreFailure) {
		t.Fatalf("error = %v, want %v", err, core.ErrStoreFailure)
	}
}

func TestNewID(t *testing.T) {
	a := NewID("order")
	b := NewID("order")
	if a == b {
		t.Error("ids must be unique")
	}
	if len(a) <= len("order_") || a[:6] != "order_" {
		t.Errorf("id = %q, want order_ prefix", a)
	}
}
