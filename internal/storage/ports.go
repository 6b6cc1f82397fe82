package storage

import (
	"context"

	"ubs/internal/core"
)

// Ports implemented by the SQLite store and the in-memory store.
type (
	UnitWriter interface {
		CreateUnit(ctx context.Context, name string, federal, state, municipal core.Money) (int64, error)
	}

	ExpenseWriter interface {
		// CreateExpense fails with core.ErrUnitNotFound when unitID does not exist.
		CreateExpense(ctx context.Context, unitID int64, description string, amount core.Money) (int64, error)
	}

	// Reader is everything the reports need.
	Reader interface {
		GetUnit(ctx context.Context, id int64) (core.Unit, error)
		ListUnits(ctx context.Context) ([]core.Unit, error)
		ListExpenseAmounts(ctx context.Context, unitID int64) ([]core.Money, error)
	}

	ExpenseLister interface {
		ListExpenses(ctx context.Context, unitID int64) ([]core.Expense, error)
	}

	// Store is the full ledger store.
	Store interface {
		UnitWriter
		ExpenseWriter
		Reader
		ExpenseLister
		Ping(ctx context.Context) error
		Close() error
	}
)
