package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ubs/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	insertUnit = `INSERT INTO units (name, federal_cents, state_cents, municipal_cents)
VALUES (?, ?, ?, ?)`

	insertExpense = `INSERT INTO expenses (unit_id, description, amount_cents)
VALUES (?, ?, ?)`

	selectUnit = `SELECT id, name, federal_cents, state_cents, municipal_cents, created_at
FROM units WHERE id = ?`

	selectUnits = `SELECT id, name, federal_cents, state_cents, municipal_cents, created_at
FROM units ORDER BY id`

	selectExpenseAmounts = `SELECT amount_cents FROM expenses WHERE unit_id = ? ORDER BY id`

	selectExpenses = `SELECT id, unit_id, description, amount_cents, created_at
FROM expenses WHERE unit_id = ? ORDER BY id`
)

// SQLiteStore keeps the ledger in a single local SQLite file. It owns one
// connection for its whole lifetime; Close releases it.
type SQLiteStore struct {
	db   *sql.DB
	dsn  string
	path string
}

// DSN builds the driver data source name for path with foreign keys enforced
// on every connection.
func DSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// OpenSQLite opens (creating if needed) the database file at path. The schema
// is not touched until Initialize is called.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection, never pooled: every statement is a blocking round trip
	// on the same handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteStore{db: db, dsn: dsn, path: path}, nil
}

// NewSQLiteStore opens the store and initializes its schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Initialize ensures both tables exist. It is idempotent.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if err := RunMigrations(s.dsn); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	slog.DebugContext(ctx, "SQLite schema ready", "path", s.path)
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateUnit implements UnitWriter
func (s *SQLiteStore) CreateUnit(ctx context.Context, name string, federal, state, municipal core.Money) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertUnit, name, federal.Cents, state.Cents, municipal.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert unit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unit id: %w", err)
	}

	slog.InfoContext(ctx, "Unit saved to SQLite",
		"id", id,
		"name", name,
		"federal_cents", federal.Cents,
		"state_cents", state.Cents,
		"municipal_cents", municipal.Cents)

	return id, nil
}

// CreateExpense implements ExpenseWriter
func (s *SQLiteStore) CreateExpense(ctx context.Context, unitID int64, description string, amount core.Money) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertExpense, unitID, description, amount.Cents)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("insert expense for unit %d: %w", unitID, core.ErrUnitNotFound)
		}
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"unit_id", unitID,
		"description", description,
		"amount_cents", amount.Cents)

	return id, nil
}

// GetUnit implements Reader
func (s *SQLiteStore) GetUnit(ctx context.Context, id int64) (core.Unit, error) {
	u, err := scanUnit(s.db.QueryRowContext(ctx, selectUnit, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Unit{}, fmt.Errorf("get unit %d: %w", id, core.ErrUnitNotFound)
	}
	if err != nil {
		return core.Unit{}, fmt.Errorf("get unit %d: %w", id, err)
	}
	return u, nil
}

// ListUnits implements Reader
func (s *SQLiteStore) ListUnits(ctx context.Context) ([]core.Unit, error) {
	rows, err := s.db.QueryContext(ctx, selectUnits)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []core.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

// ListExpenseAmounts implements Reader
func (s *SQLiteStore) ListExpenseAmounts(ctx context.Context, unitID int64) ([]core.Money, error) {
	rows, err := s.db.QueryContext(ctx, selectExpenseAmounts, unitID)
	if err != nil {
		return nil, fmt.Errorf("list expense amounts: %w", err)
	}
	defer rows.Close()

	var amounts []core.Money
	for rows.Next() {
		var cents int64
		if err := rows.Scan(&cents); err != nil {
			return nil, fmt.Errorf("scan expense amount: %w", err)
		}
		amounts = append(amounts, core.Money{Cents: cents})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expense amounts: %w", err)
	}
	return amounts, nil
}

// ListExpenses implements ExpenseLister
func (s *SQLiteStore) ListExpenses(ctx context.Context, unitID int64) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, selectExpenses, unitID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			cents   int64
			created int64
		)
		if err := rows.Scan(&e.ID, &e.UnitID, &e.Description, &cents, &created); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = core.Money{Cents: cents}
		e.CreatedAt = time.Unix(created, 0).UTC()
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (core.Unit, error) {
	var u core.Unit
	var federal, state, municipal, created int64
	if err := row.Scan(&u.ID, &u.Name, &federal, &state, &municipal, &created); err != nil {
		return core.Unit{}, err
	}
	u.Federal = core.Money{Cents: federal}
	u.State = core.Money{Cents: state}
	u.Municipal = core.Money{Cents: municipal}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
