package backend

import (
	"context"

	"ubs/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the opened store and its cleanup function.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Memory specific. Empty means start with no units.
	SeedDir string
}

// Type represents the kind of store backing the ledger.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}
