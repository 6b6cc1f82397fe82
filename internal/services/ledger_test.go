package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"ubs/internal/core"
	"ubs/internal/storage"
	"ubs/internal/storage/memory"
)

// countingStore counts the reads the aggregator performs.
type countingStore struct {
	storage.Store
	listUnits atomic.Int32
	getUnit   atomic.Int32
}

func (s *countingStore) ListUnits(ctx context.Context) ([]core.Unit, error) {
	s.listUnits.Add(1)
	return s.Store.ListUnits(ctx)
}

func (s *countingStore) GetUnit(ctx context.Context, id int64) (core.Unit, error) {
	s.getUnit.Add(1)
	return s.Store.GetUnit(ctx, id)
}

// pausingStore holds one ListExpenseAmounts call, after the read, until
// release is closed.
type pausingStore struct {
	storage.Store
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newPausingStore() *pausingStore {
	return &pausingStore{
		Store:   memory.New(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *pausingStore) ListExpenseAmounts(ctx context.Context, unitID int64) ([]core.Money, error) {
	amounts, err := s.Store.ListExpenseAmounts(ctx, unitID)
	if s.armed.CompareAndSwap(true, false) {
		close(s.entered)
		<-s.release
	}
	return amounts, err
}

func newLedger(t *testing.T, cached bool) (*Ledger, *countingStore) {
	t.Helper()
	store := &countingStore{Store: memory.New()}
	var rc *ReportCache
	if cached {
		var err error
		rc, err = NewReportCache(100, time.Minute)
		if err != nil {
			t.Fatalf("new report cache: %v", err)
		}
	}
	l := NewLedger(store, rc, nil)
	t.Cleanup(func() { _ = l.Close() })
	return l, store
}

func reais(v float64) core.Money { return core.Money{Cents: int64(math.Round(v * 100))} }

func TestLedgerRegisterAndReport(t *testing.T) {
	ctx := context.Background()
	for _, cached := range []bool{false, true} {
		l, _ := newLedger(t, cached)

		u, err := l.RegisterUnit(ctx, core.Unit{Name: "UBS A", Federal: reais(1000), State: reais(500), Municipal: reais(200)})
		if err != nil {
			t.Fatalf("register unit: %v", err)
		}
		if u.ID != 1 {
			t.Fatalf("expected id 1, got %d", u.ID)
		}
		e, err := l.RegisterExpense(ctx, core.Expense{UnitID: u.ID, Description: "Supplies", Amount: reais(300)})
		if err != nil || e.ID != 1 {
			t.Fatalf("register expense: %+v %v", e, err)
		}

		r, err := l.UnitReport(ctx, u.ID)
		if err != nil {
			t.Fatalf("unit report: %v", err)
		}
		if r.TotalExpenses.Cents != 30000 || r.GrandTotal().Cents != 200000 {
			t.Fatalf("cached=%v unexpected report %+v", cached, r)
		}

		totals, err := l.OverallReport(ctx)
		if err != nil || len(totals) != 1 || totals[0].Total.Cents != 200000 {
			t.Fatalf("cached=%v unexpected overall %+v %v", cached, totals, err)
		}
	}
}

func TestLedgerValidationWritesNothing(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, false)

	if _, err := l.RegisterUnit(ctx, core.Unit{Name: " "}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := l.RegisterExpense(ctx, core.Expense{UnitID: 1, Description: "x", Amount: core.Money{Cents: -1}}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	units, err := l.Units(ctx)
	if err != nil || len(units) != 0 {
		t.Fatalf("expected no units, got %v %v", units, err)
	}
}

func TestLedgerUnknownUnit(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, true)

	if _, err := l.RegisterExpense(ctx, core.Expense{UnitID: 42, Description: "x", Amount: reais(1)}); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := l.UnitReport(ctx, 42); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := l.Expenses(ctx, 42); !core.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLedgerCachesUntilWrite(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t, true)

	u, _ := l.RegisterUnit(ctx, core.Unit{Name: "UBS X", Federal: reais(100)})

	for i := 0; i < 3; i++ {
		if _, err := l.OverallReport(ctx); err != nil {
			t.Fatalf("overall report: %v", err)
		}
		if _, err := l.UnitReport(ctx, u.ID); err != nil {
			t.Fatalf("unit report: %v", err)
		}
	}
	if n := store.listUnits.Load(); n != 1 {
		t.Fatalf("expected one overall computation, got %d", n)
	}
	if n := store.getUnit.Load(); n != 1 {
		t.Fatalf("expected one unit computation, got %d", n)
	}

	if _, err := l.RegisterExpense(ctx, core.Expense{UnitID: u.ID, Description: "fuel", Amount: reais(50)}); err != nil {
		t.Fatalf("register expense: %v", err)
	}
	r, _ := l.UnitReport(ctx, u.ID)
	if r.TotalExpenses.Cents != 5000 {
		t.Fatalf("stale unit report after write: %+v", r)
	}
	totals, _ := l.OverallReport(ctx)
	if totals[0].Total.Cents != 15000 {
		t.Fatalf("stale overall report after write: %+v", totals)
	}

	if _, err := l.RegisterUnit(ctx, core.Unit{Name: "UBS Y", Federal: reais(400)}); err != nil {
		t.Fatalf("register unit: %v", err)
	}
	totals, _ = l.OverallReport(ctx)
	if len(totals) != 2 {
		t.Fatalf("overall report not invalidated by new unit: %+v", totals)
	}
}

func TestLedgerWriteDuringReportIsNotCached(t *testing.T) {
	reports := map[string]func(ctx context.Context, l *Ledger, unitID int64) (int64, error){
		"unit": func(ctx context.Context, l *Ledger, unitID int64) (int64, error) {
			r, err := l.UnitReport(ctx, unitID)
			return r.GrandTotal().Cents, err
		},
		"overall": func(ctx context.Context, l *Ledger, _ int64) (int64, error) {
			totals, err := l.OverallReport(ctx)
			if err != nil || len(totals) != 1 {
				return 0, fmt.Errorf("totals %+v: %v", totals, err)
			}
			return totals[0].Total.Cents, nil
		},
	}

	for name, report := range reports {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newPausingStore()
			rc, err := NewReportCache(100, 0)
			if err != nil {
				t.Fatalf("new report cache: %v", err)
			}
			l := NewLedger(store, rc, nil)
			t.Cleanup(func() { _ = l.Close() })

			u, err := l.RegisterUnit(ctx, core.Unit{Name: "UBS A", Federal: reais(100)})
			if err != nil {
				t.Fatalf("register unit: %v", err)
			}

			type result struct {
				cents int64
				err   error
			}
			done := make(chan result, 1)
			store.armed.Store(true)
			go func() {
				cents, err := report(ctx, l, u.ID)
				done <- result{cents, err}
			}()

			<-store.entered
			if _, err := l.RegisterExpense(ctx, core.Expense{UnitID: u.ID, Description: "Supplies", Amount: reais(300)}); err != nil {
				t.Fatalf("register expense: %v", err)
			}
			close(store.release)

			if res := <-done; res.err != nil || res.cents != 10000 {
				t.Fatalf("in-flight report: %d %v", res.cents, res.err)
			}

			got, err := report(ctx, l, u.ID)
			if err != nil {
				t.Fatalf("report after write: %v", err)
			}
			if got != 40000 {
				t.Fatalf("report after write = %d cents, want 40000", got)
			}
		})
	}
}

func TestLedgerOverallReturnsCopy(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, true)
	_, _ = l.RegisterUnit(ctx, core.Unit{Name: "UBS X", Federal: reais(100)})

	first, _ := l.OverallReport(ctx)
	first[0].Name = "changed"
	second, _ := l.OverallReport(ctx)
	if second[0].Name != "UBS X" {
		t.Fatalf("cached report was mutated: %+v", second)
	}
}

func TestLedgerEmptyOverall(t *testing.T) {
	l, _ := newLedger(t, true)
	totals, err := l.OverallReport(context.Background())
	if err != nil || len(totals) != 0 {
		t.Fatalf("expected empty report, got %v %v", totals, err)
	}
}

func TestLedgerExpensesAndPing(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, false)
	u, _ := l.RegisterUnit(ctx, core.Unit{Name: "UBS A"})
	for _, d := range []string{"first", "second"} {
		if _, err := l.RegisterExpense(ctx, core.Expense{UnitID: u.ID, Description: d, Amount: reais(1)}); err != nil {
			t.Fatalf("register expense: %v", err)
		}
	}
	expenses, err := l.Expenses(ctx, u.ID)
	if err != nil || len(expenses) != 2 || expenses[0].Description != "first" {
		t.Fatalf("unexpected expenses %+v %v", expenses, err)
	}
	if err := l.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
