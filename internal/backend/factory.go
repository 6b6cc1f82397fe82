package backend

import (
	"context"
	"fmt"

	"ubs/internal/log"
	"ubs/internal/storage"
	"ubs/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new store factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLite:
		return f.createSQLiteStore(ctx, config)
	case Memory:
		return f.createMemoryStore(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (*Result, error) {
	store, err := storage.NewSQLiteStore(ctx, config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", log.FieldDBPath, config.SQLiteDBPath)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) (*Result, error) {
	var store *memory.Store
	if config.SeedDir != "" {
		store = memory.NewFromFiles(config.SeedDir)
	} else {
		store = memory.New()
	}

	f.logger.Info("Initialized memory backend", "seed_directory", config.SeedDir)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}
