// Package store persists run history and resolved picklist assignments so a
// later session can restore its configuration from a previous run.
//
// Backends register themselves under a kind ("sqlite", "postgres", "mssql")
// and are selected by configuration; the engine depends only on Repository.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Config selects and configures a backend.
type Config struct {
	// Kind must match a registered backend kind.
	Kind string
	// DSN is backend-specific (file path for sqlite, connection URL otherwise).
	DSN string
}

// RunRecord is one completed enrichment run.
type RunRecord struct {
	ID                string
	Job               string
	Country           string
	StartedAt         time.Time
	FinishedAt        time.Time
	Templates         int
	ColumnsResolved   int
	ColumnsUnresolved int
}

// Repository is the backend-agnostic persistence interface.
//
// Implementations must be safe for sequential use from one goroutine; the CLI
// writes once per run.
type Repository interface {
	// Close releases backend resources. Call once at shutdown.
	Close()

	// EnsureSchema creates tables if they do not exist. Idempotent.
	EnsureSchema(ctx context.Context) error

	// SaveRun inserts one run record.
	SaveRun(ctx context.Context, rec RunRecord) error

	// SaveAssignments stores the resolved picklist assignments of a run,
	// keyed by normalized column name.
	SaveAssignments(ctx context.Context, runID string, assignments map[string]string) error

	// LoadAssignments returns the assignments saved for a run; empty map when
	// the run saved none.
	LoadAssignments(ctx context.Context, runID string) (map[string]string, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend factory under a kind. Backend packages call it
// from init().
//
// Panics on empty kind, nil factory, or duplicate registration; ambiguous
// backend selection should fail fast at startup.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("store: Register called with empty kind")
	}
	if f == nil {
		panic("store: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("store: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("store: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported store kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
