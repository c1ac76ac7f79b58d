package store

import (
	"context"
	"time"

	"github.com/jw6ventures/dyncal/internal/metrics"
)

// Store holds the PostgreSQL-backed repositories.
type Store struct {
	pool PgxPool

	Availability AvailabilityRepository
}

// New builds a Store on pool.
func New(pool PgxPool) *Store {
	return &Store{
		pool:         pool,
		Availability: &availabilityRepo{pool: pool},
	}
}

// HealthCheck pings the database; /readyz reports its result.
func (s *Store) HealthCheck(ctx context.Context) error {
	defer observeDB(ctx, "db.ping")()
	return s.pool.Ping(ctx)
}

// observeDB records the latency of one database operation when the returned
// func runs.
func observeDB(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() { metrics.ObserveDBLatency(ctx, operation, start) }
}
