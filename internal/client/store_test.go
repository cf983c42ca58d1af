package client

import (
	"errors"
	"strings"
	"testing"

	"github.com/toozhub/toozhub/internal/models"
)

func TestStore_LoadReplacesCache(t *testing.T) {
	lists := [][]models.Vehicle{
		{{ID: 1}, {ID: 2}},
		{{ID: 3}},
	}
	calls := 0
	store := NewStore(func() ([]models.Vehicle, error) {
		list := lists[calls]
		calls++
		return list, nil
	})

	if _, err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(store.Items()) != 2 {
		t.Fatalf("got %d items, want 2", len(store.Items()))
	}

	if _, err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(store.Items()) != 1 || store.Items()[0].ID != 3 {
		t.Errorf("cache not replaced: %+v", store.Items())
	}
}

func TestStore_LoadErrorKeepsCache(t *testing.T) {
	fail := false
	store := NewStore(func() ([]models.Vehicle, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []models.Vehicle{{ID: 1}}, nil
	})

	if _, err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fail = true
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error")
	}
	if len(store.Items()) != 1 {
		t.Errorf("failed load should keep previous cache, got %+v", store.Items())
	}
}

func TestStore_Find(t *testing.T) {
	store := NewStore(func() ([]models.Vehicle, error) {
		return []models.Vehicle{{ID: 1}, {ID: 7}}, nil
	})
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	v, ok := store.Find(func(v models.Vehicle) bool { return v.ID == 7 })
	if !ok || v.ID != 7 {
		t.Errorf("Find(id 7) = %+v, %v", v, ok)
	}
	if _, ok := store.Find(func(v models.Vehicle) bool { return v.ID == 99 }); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestFilterRows(t *testing.T) {
	rows := [][]interface{}{
		{1, "alice@example.com", "Alice"},
		{2, "bob@example.com", "Bob"},
	}
	got := FilterRows(rows, "ALICE")
	if len(got) != 1 || got[0][0] != 1 {
		t.Errorf("unexpected filter result: %v", got)
	}
	if len(FilterRows(rows, "")) != 2 {
		t.Error("empty query should keep all rows")
	}
}

func TestRenderTable_EmptyPlaceholder(t *testing.T) {
	var sb strings.Builder
	RenderTable(&sb, []string{"ID"}, nil)
	if !strings.Contains(sb.String(), "(nothing to show)") {
		t.Errorf("expected placeholder, got %q", sb.String())
	}
}

func TestVehicleRows_DisplayNameFallback(t *testing.T) {
	brand := "Skoda"
	model := "Octavia"
	rows := VehicleRows([]models.Vehicle{
		{ID: 1, Brand: &brand, Model: &model},
		{ID: 2},
	})
	if rows[0][1] != "Skoda Octavia" {
		t.Errorf("got %v, want Skoda Octavia", rows[0][1])
	}
	if rows[1][1] != "(unnamed)" {
		t.Errorf("got %v, want (unnamed)", rows[1][1])
	}
}
