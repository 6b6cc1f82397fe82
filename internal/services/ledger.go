// Package services holds the ledger operations used by the web surface.
package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ubs/internal/cache"
	"ubs/internal/core"
	"ubs/internal/log"
	"ubs/internal/report"
	"ubs/internal/storage"
)

const overallKey = "overall"

func unitKey(id int64) string {
	return "unit:" + strconv.FormatInt(id, 10)
}

// ReportCache keeps computed reports until the next write touching them.
//
// Every invalidation bumps gen. A report is only stored when gen has not
// moved since its computation started, so a report read before a write can
// never land in the cache after that write.
type ReportCache struct {
	units   *cache.Ristretto[core.UnitReport]
	overall *cache.Ristretto[[]core.UnitTotal]

	mu  sync.Mutex
	gen uint64
}

// NewReportCache creates the unit and overall report caches.
func NewReportCache(size int, ttl time.Duration) (*ReportCache, error) {
	units, err := cache.NewRistretto[core.UnitReport](int64(size), ttl)
	if err != nil {
		return nil, fmt.Errorf("unit report cache: %w", err)
	}
	overall, err := cache.NewRistretto[[]core.UnitTotal](1, ttl)
	if err != nil {
		units.Close()
		return nil, fmt.Errorf("overall report cache: %w", err)
	}
	return &ReportCache{units: units, overall: overall}, nil
}

func (c *ReportCache) invalidate(unitID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if unitID > 0 {
		c.units.Delete(unitKey(unitID))
	}
	c.overall.Delete(overallKey)
}

func (c *ReportCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// storeUnit caches r unless a write happened since gen was read.
func (c *ReportCache) storeUnit(gen uint64, r core.UnitReport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.units.Set(unitKey(r.UnitID), r)
	return true
}

// storeOverall caches a copy of totals unless a write happened since gen was
// read.
func (c *ReportCache) storeOverall(gen uint64, totals []core.UnitTotal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.overall.Set(overallKey, append([]core.UnitTotal(nil), totals...))
	return true
}

func (c *ReportCache) Close() {
	c.units.Close()
	c.overall.Close()
}

// Ledger registers units and expenses and serves their reports.
type Ledger struct {
	store      storage.Store
	aggregator *report.Aggregator
	cache      *ReportCache
	logger     *log.Logger
}

// NewLedger builds a Ledger over store. rc may be nil to disable caching.
func NewLedger(store storage.Store, rc *ReportCache, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Discard()
	}
	return &Ledger{
		store:      store,
		aggregator: report.NewAggregator(store),
		cache:      rc,
		logger:     logger.WithComponent(log.ComponentLedger),
	}
}

// RegisterUnit validates and stores a new unit.
func (l *Ledger) RegisterUnit(ctx context.Context, u core.Unit) (core.Unit, error) {
	if err := u.Validate(); err != nil {
		return core.Unit{}, err
	}
	id, err := l.store.CreateUnit(ctx, u.Name, u.Federal, u.State, u.Municipal)
	if err != nil {
		l.logger.LogError(ctx, "Failed to register unit", err, log.OpCreate, log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		return core.Unit{}, fmt.Errorf("register unit: %w", err)
	}
	u.ID = id
	if l.cache != nil {
		l.cache.invalidate(0)
	}
	l.logger.InfoContext(ctx, "Unit registered", log.NewFields().
		WithUnit(id, u.Name).
		WithOperation(log.OpCreate).
		ToSlice()...)
	return u, nil
}

// RegisterExpense validates and stores an expense. An unknown unit yields
// core.ErrUnitNotFound and nothing is written.
func (l *Ledger) RegisterExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	id, err := l.store.CreateExpense(ctx, e.UnitID, e.Description, e.Amount)
	if err != nil {
		kind := log.ErrorTypeDatabase
		if core.IsNotFound(err) {
			kind = log.ErrorTypeNotFound
		}
		l.logger.LogError(ctx, "Failed to register expense", err, log.OpCreate, log.NewFields().
			WithUnit(e.UnitID, "").
			WithErrorType(kind))
		return core.Expense{}, fmt.Errorf("register expense: %w", err)
	}
	e.ID = id
	if l.cache != nil {
		l.cache.invalidate(e.UnitID)
	}
	l.logger.InfoContext(ctx, "Expense registered", log.NewFields().
		WithExpense(id, e.UnitID, e.Description, e.Amount.Cents).
		WithOperation(log.OpCreate).
		ToSlice()...)
	return e, nil
}

// UnitReport returns the report for unitID, from cache when possible.
func (l *Ledger) UnitReport(ctx context.Context, unitID int64) (core.UnitReport, error) {
	var gen uint64
	if l.cache != nil {
		if r, ok := l.cache.units.Get(unitKey(unitID)); ok {
			l.logger.DebugContext(ctx, "Unit report served from cache", log.FieldUnitID, unitID, log.FieldCacheHit, true)
			return r, nil
		}
		gen = l.cache.generation()
	}
	r, err := l.aggregator.UnitReport(ctx, unitID)
	if err != nil {
		return core.UnitReport{}, err
	}
	if l.cache != nil && !l.cache.storeUnit(gen, r) {
		l.logger.DebugContext(ctx, "Unit report not cached", log.FieldUnitID, unitID)
	}
	l.logger.DebugContext(ctx, "Unit report computed", log.FieldUnitID, unitID, log.FieldCacheHit, false)
	return r, nil
}

// OverallReport returns one total per unit. The slice is a copy and may be
// modified by the caller.
func (l *Ledger) OverallReport(ctx context.Context) ([]core.UnitTotal, error) {
	var gen uint64
	if l.cache != nil {
		if totals, ok := l.cache.overall.Get(overallKey); ok {
			l.logger.DebugContext(ctx, "Overall report served from cache", log.FieldUnits, len(totals), log.FieldCacheHit, true)
			return append([]core.UnitTotal(nil), totals...), nil
		}
		gen = l.cache.generation()
	}
	totals, err := l.aggregator.OverallReport(ctx)
	if err != nil {
		return nil, err
	}
	if l.cache != nil && !l.cache.storeOverall(gen, totals) {
		l.logger.DebugContext(ctx, "Overall report not cached", log.FieldUnits, len(totals))
	}
	l.logger.DebugContext(ctx, "Overall report computed", log.FieldUnits, len(totals), log.FieldCacheHit, false)
	return totals, nil
}

// Units lists every unit in registration order.
func (l *Ledger) Units(ctx context.Context) ([]core.Unit, error) {
	units, err := l.store.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

// Expenses lists the expenses of an existing unit.
func (l *Ledger) Expenses(ctx context.Context, unitID int64) ([]core.Expense, error) {
	if _, err := l.store.GetUnit(ctx, unitID); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	expenses, err := l.store.ListExpenses(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Ping reports whether the store is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Close releases the cache and the store.
func (l *Ledger) Close() error {
	if l.cache != nil {
		l.cache.Close()
	}
	if err := l.store.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	return nil
}
