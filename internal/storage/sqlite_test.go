package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"ubs/internal/core"
)

var _ Store = (*SQLiteStore)(nil)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "ubs.db")
	s, err := NewSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	id, err := s.CreateUnit(ctx, "UBS A", core.Money{Cents: 100000}, core.Money{Cents: 50000}, core.Money{Cents: 20000})
	if err != nil {
		t.Fatalf("create unit: %v", err)
	}
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	// A fresh store on the same file keeps the data.
	other, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer other.Close()
	if err := other.Initialize(ctx); err != nil {
		t.Fatalf("initialize reopened store: %v", err)
	}
	units, err := other.ListUnits(ctx)
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	if len(units) != 1 || units[0].ID != id {
		t.Fatalf("expected the one unit to survive, got %+v", units)
	}
}

func TestCreateUnitRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	faker := gofakeit.New(42)

	for i := 0; i < 25; i++ {
		name := faker.Company()
		federal := core.Money{Cents: int64(faker.IntRange(0, 100000000))}
		state := core.Money{Cents: int64(faker.IntRange(0, 100000000))}
		municipal := core.Money{Cents: int64(faker.IntRange(0, 100000000))}

		id, err := s.CreateUnit(ctx, name, federal, state, municipal)
		if err != nil {
			t.Fatalf("create unit %d: %v", i, err)
		}
		got, err := s.GetUnit(ctx, id)
		if err != nil {
			t.Fatalf("get unit %d: %v", id, err)
		}
		if got.Name != name || got.Federal != federal || got.State != state || got.Municipal != municipal {
			t.Fatalf("round trip mismatch: got %+v, want %s %v %v %v", got, name, federal, state, municipal)
		}
		if got.CreatedAt.IsZero() {
			t.Fatalf("expected created_at to be set")
		}
	}
}

func TestGetUnitNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.GetUnit(context.Background(), 999)
	if !errors.Is(err, core.ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestCreateExpenseRequiresUnit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CreateExpense(ctx, 12345, "orphan", core.Money{Cents: 100})
	if !errors.Is(err, core.ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}

	amounts, err := s.ListExpenseAmounts(ctx, 12345)
	if err != nil || len(amounts) != 0 {
		t.Fatalf("expected no expense written, got %v (err=%v)", amounts, err)
	}
}

func TestListsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	names := []string{"UBS C", "UBS A", "UBS B"}
	var ids []int64
	for _, n := range names {
		id, err := s.CreateUnit(ctx, n, core.Money{}, core.Money{}, core.Money{})
		if err != nil {
			t.Fatalf("create unit: %v", err)
		}
		ids = append(ids, id)
	}
	units, err := s.ListUnits(ctx)
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	for i, u := range units {
		if u.Name != names[i] || u.ID != ids[i] {
			t.Fatalf("position %d: got %s/%d, want %s/%d", i, u.Name, u.ID, names[i], ids[i])
		}
	}

	for _, cents := range []int64{300, 100, 200} {
		if _, err := s.CreateExpense(ctx, ids[0], "item", core.Money{Cents: cents}); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}
	if _, err := s.CreateExpense(ctx, ids[1], "other unit", core.Money{Cents: 999}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	amounts, err := s.ListExpenseAmounts(ctx, ids[0])
	if err != nil {
		t.Fatalf("list amounts: %v", err)
	}
	want := []int64{300, 100, 200}
	if len(amounts) != len(want) {
		t.Fatalf("expected %d amounts, got %d", len(want), len(amounts))
	}
	for i := range want {
		if amounts[i].Cents != want[i] {
			t.Fatalf("amount %d: got %d, want %d", i, amounts[i].Cents, want[i])
		}
	}

	expenses, err := s.ListExpenses(ctx, ids[1])
	if err != nil || len(expenses) != 1 || expenses[0].Description != "other unit" || expenses[0].UnitID != ids[1] {
		t.Fatalf("unexpected expenses: %+v (err=%v)", expenses, err)
	}
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestPingAfterClose(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error after close")
	}
}
