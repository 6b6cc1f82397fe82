// Package memory is an in-process ledger store with the same contract as the
// SQLite store. Nothing survives a restart.
package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ubs/internal/core"
)

type Store struct {
	mu       sync.Mutex
	units    []core.Unit
	expenses []core.Expense
	closed   bool
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds units from base/seed_units.txt. Each non-comment line is
// "name;federal;state;municipal". Malformed lines are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	for _, line := range readLines(filepath.Join(base, "seed_units.txt")) {
		parts := strings.Split(line, ";")
		if len(parts) != 4 {
			continue
		}
		var amounts [3]core.Money
		ok := true
		for i, raw := range parts[1:] {
			m, err := core.ParseAmount(raw)
			if err != nil {
				ok = false
				break
			}
			amounts[i] = m
		}
		if !ok {
			continue
		}
		_, _ = s.CreateUnit(context.Background(), strings.TrimSpace(parts[0]), amounts[0], amounts[1], amounts[2])
	}
	return s
}

// CreateUnit stores the unit and returns its sequential id.
func (s *Store) CreateUnit(_ context.Context, name string, federal, state, municipal core.Money) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errClosed
	}
	id := int64(len(s.units) + 1)
	s.units = append(s.units, core.Unit{
		ID:        id,
		Name:      name,
		Federal:   federal,
		State:     state,
		Municipal: municipal,
		CreatedAt: time.Now().UTC(),
	})
	return id, nil
}

// CreateExpense rejects unknown units the way the foreign key does.
func (s *Store) CreateExpense(_ context.Context, unitID int64, description string, amount core.Money) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errClosed
	}
	if _, ok := s.unit(unitID); !ok {
		return 0, fmt.Errorf("insert expense for unit %d: %w", unitID, core.ErrUnitNotFound)
	}
	id := int64(len(s.expenses) + 1)
	s.expenses = append(s.expenses, core.Expense{
		ID:          id,
		UnitID:      unitID,
		Description: description,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	})
	return id, nil
}

func (s *Store) GetUnit(_ context.Context, id int64) (core.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.unit(id)
	if !ok {
		return core.Unit{}, fmt.Errorf("get unit %d: %w", id, core.ErrUnitNotFound)
	}
	return u, nil
}

func (s *Store) ListUnits(_ context.Context) ([]core.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Unit(nil), s.units...), nil
}

func (s *Store) ListExpenseAmounts(_ context.Context, unitID int64) ([]core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Money
	for _, e := range s.expenses {
		if e.UnitID == unitID {
			out = append(out, e.Amount)
		}
	}
	return out, nil
}

func (s *Store) ListExpenses(_ context.Context, unitID int64) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.UnitID == unitID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var errClosed = errors.New("memory store closed")

// unit must be called with mu held. Ids are dense, so lookup is by index.
func (s *Store) unit(id int64) (core.Unit, bool) {
	if id < 1 || id > int64(len(s.units)) {
		return core.Unit{}, false
	}
	return s.units[id-1], true
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
