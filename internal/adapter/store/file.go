package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps each collection as one JSON array file under dir. A
// missing file reads as an empty collection; every mutation rewrites the
// whole file.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(c Collection) string {
	return filepath.Join(f.dir, string(c)+".json")
}

func (f *FileBackend) ReadAll(_ context.Context, c Collection) ([]json.RawMessage, error) {
	data, err := os.ReadFile(f.path(c))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path(c), err)
	}
	return docs, nil
}

func (f *FileBackend) WriteAll(_ context.Context, c Collection, docs []json.RawMessage) error {
	if docs == nil {
		docs = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(c), data, 0o644)
}

func (f *FileBackend) Append(ctx context.Context, c Collection, _ string, doc json.RawMessage) error {
	docs, err := f.ReadAll(ctx, c)
	if err != nil {
		return err
	}
	return f.WriteAll(ctx, c, append(docs, doc))
}

func (f *FileBackend) UpdateByID(ctx context.Context, c Collection, id string, doc json.RawMessage) (bool, error) {
	docs, err := f.ReadAll(ctx, c)
	if err != nil {
		return false, err
	}
	for i, existing := range docs {
		existingID, err := docID(existing)
		if err != nil {
			return false, err
		}
		if existingID == id {
			docs[i] = doc
			return true, f.WriteAll(ctx, c, docs)
		}
	}
	return false, nil
}

func (f *FileBackend) DeleteByID(ctx context.Context, c Collection, id string) (bool, error) {
	docs, err := f.ReadAll(ctx, c)
	if err != nil {
		return false, err
	}
	kept := docs[:0]
	found := false
	for _, existing := range docs {
		existingID, err := docID(existing)
		if err != nil {
			return false, err
		}
		if existingID == id {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return false, nil
	}
	return true, f.WriteAll(ctx, c, kept)
}

func (f *FileBackend) Close(context.Context) error { return nil }

func docID(doc json.RawMessage) (string, error) {
	var rec struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(doc, &rec); err != nil {
		return "", fmt.Errorf("record without parsable id: %w", err)
	}
	return rec.ID, nil
}
