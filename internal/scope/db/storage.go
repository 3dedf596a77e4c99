package db

import (
	"context"
	"fmt"
	"time"

	"github.com/dsjohal14/prepsearch/internal/libs/config"
	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
	"github.com/dsjohal14/prepsearch/internal/scope/search"
)

// Repository is a read-only source of practice tests.
// HTTPRepository, PostgresRepository and FileStore implement it.
type Repository interface {
	// Name identifies the source in logs
	Name() string

	// ListTests returns at most limit tests in repository order
	ListTests(ctx context.Context, limit int) ([]catalog.TestDocument, error)

	// Close releases any resources held by the repository
	Close() error
}

// Ensure every source implements Repository and satisfies the search session
var (
	_ Repository = (*HTTPRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*FileStore)(nil)

	_ search.Repository = Repository(nil)
)

// Open creates the repository selected by cfg.TestsSource
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.TestsSource {
	case config.SourceHTTP:
		return NewHTTPRepository(cfg.TestsAPIURL, cfg.FetchTimeout), nil
	case config.SourcePostgres:
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		d, err := New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepository(d), nil
	case config.SourceFile:
		return NewFileStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown test source %q", cfg.TestsSource)
	}
}
