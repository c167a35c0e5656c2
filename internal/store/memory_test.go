package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLoadBeforeSave(t *testing.T) {
	m := NewMemory()
	if _, err := m.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemorySaveReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Save(ctx, map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.Save(ctx, map[string]string{"a": "3"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rec) != 1 || rec["a"] != "3" {
		t.Fatalf("record = %v, want only a=3", rec)
	}
}

func TestMemoryLoadReturnsACopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.Save(ctx, map[string]string{"a": "1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, _ := m.Load(ctx)
	rec["a"] = "mutated"
	again, _ := m.Load(ctx)
	if again["a"] != "1" {
		t.Fatalf("caller mutation leaked into the store")
	}
}
