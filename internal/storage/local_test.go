package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorageGetMissing(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	if _, err := s.Get(context.Background(), "nope.csv"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStoragePutReplaces(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "nested", "data")
	s := NewLocalStorage(root)

	if err := s.Put(ctx, "data.csv", []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "data.csv", []byte("two")); err != nil {
		t.Fatalf("put again: %v", err)
	}
	got, err := s.Get(ctx, "data.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("got %q want %q", got, "two")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestLocalStorageHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewLocalStorage(t.TempDir())
	if err := s.Put(ctx, "data.csv", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
