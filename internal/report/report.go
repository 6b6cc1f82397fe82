// Package report aggregates stored units and expenses into the figures shown
// by the unit and overall charts.
package report

import (
	"context"
	"fmt"

	"ubs/internal/core"
	"ubs/internal/storage"
)

// Aggregator computes reports from a storage.Reader. It never writes.
type Aggregator struct {
	store storage.Reader
}

func NewAggregator(store storage.Reader) *Aggregator {
	return &Aggregator{store: store}
}

// UnitReport returns the allocations of unitID and the sum of its expenses.
// It fails with core.ErrUnitNotFound when the unit does not exist.
func (a *Aggregator) UnitReport(ctx context.Context, unitID int64) (core.UnitReport, error) {
	u, err := a.store.GetUnit(ctx, unitID)
	if err != nil {
		return core.UnitReport{}, fmt.Errorf("unit report: %w", err)
	}
	spent, err := a.totalExpenses(ctx, unitID)
	if err != nil {
		return core.UnitReport{}, fmt.Errorf("unit report: %w", err)
	}
	return core.UnitReport{
		UnitID:        u.ID,
		Name:          u.Name,
		Federal:       u.Federal,
		State:         u.State,
		Municipal:     u.Municipal,
		TotalExpenses: spent,
	}, nil
}

// OverallReport returns one row per unit, in list order, with the unit's
// grand total. No units yields an empty slice and a nil error.
//
// Units sharing a name keep separate rows.
func (a *Aggregator) OverallReport(ctx context.Context) ([]core.UnitTotal, error) {
	units, err := a.store.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("overall report: %w", err)
	}
	totals := make([]core.UnitTotal, 0, len(units))
	for _, u := range units {
		spent, err := a.totalExpenses(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("overall report: %w", err)
		}
		totals = append(totals, core.UnitTotal{
			UnitID: u.ID,
			Name:   u.Name,
			Total:  u.Total().Add(spent),
		})
	}
	return totals, nil
}

func (a *Aggregator) totalExpenses(ctx context.Context, unitID int64) (core.Money, error) {
	amounts, err := a.store.ListExpenseAmounts(ctx, unitID)
	if err != nil {
		return core.Money{}, fmt.Errorf("expenses of unit %d: %w", unitID, err)
	}
	return core.Sum(amounts), nil
}

// Labels returns a display label per row. A name used by more than one unit
// gets the unit id appended so rows stay distinguishable.
func Labels(totals []core.UnitTotal) []string {
	seen := make(map[string]int, len(totals))
	for _, t := range totals {
		seen[t.Name]++
	}
	labels := make([]string, len(totals))
	for i, t := range totals {
		if seen[t.Name] > 1 {
			labels[i] = fmt.Sprintf("%s #%d", t.Name, t.UnitID)
			continue
		}
		labels[i] = t.Name
	}
	return labels
}
