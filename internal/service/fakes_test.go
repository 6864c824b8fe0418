package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ivanoskov/staff_bot/internal/state"
)

// fakeTables — табличный сервис в памяти для тестов сценариев.
type fakeTables struct {
	mu        sync.Mutex
	rows      map[string][][]string
	appendErr error
}

func newFakeTables() *fakeTables {
	return &fakeTables{rows: make(map[string][][]string)}
}

func (f *fakeTables) EnsureTable(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[name]; ok {
		return false, nil
	}
	f.rows[name] = nil
	return true, nil
}

func (f *fakeTables) GetRange(ctx context.Context, table, cellRange string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.rows[table]))
	for i, row := range f.rows[table] {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeTables) AppendRow(ctx context.Context, table, cellRange string, row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows[table] = append(f.rows[table], append([]string(nil), row...))
	return nil
}

func (f *fakeTables) tableRows(table string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[table]
}

// fakeBlobs — файловое хранилище в памяти.
type fakeBlobs struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	uploadErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{uploads: make(map[string][]byte)}
}

func (f *fakeBlobs) UploadPhoto(ctx context.Context, name string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[name] = data
	return fmt.Sprintf("https://blobs.example/%s", name), nil
}

func newTestStates(t *testing.T) *state.Store {
	t.Helper()
	return state.New(nil, state.Config{SyncEnabled: false})
}
