package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kitchen-analytics/internal/util"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Options tunes the connection pool, read bounds and circuit breaker
type Options struct {
	MaxOpenConns    int
	MaxOrders       int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Store is a read-only view over the shared order database
type Store struct {
	db        *sqlx.DB
	breaker   *gobreaker.CircuitBreaker[interface{}]
	maxOrders int
}

// NewStore creates a new database store
func NewStore(databaseURL string, opts Options) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 25
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newStore(db, opts), nil
}

func newStore(db *sqlx.DB, opts Options) *Store {
	return &Store{
		db:        db,
		breaker:   newBreaker("store", opts.BreakerFailures, opts.BreakerTimeout),
		maxOrders: opts.MaxOrders,
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.read(func() error {
		return s.db.PingContext(ctx)
	})
}

// read runs a query through the circuit breaker. Failures are never retried.
func (s *Store) read(fn func() error) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return err
}

func newBreaker(name string, failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[interface{}] {
	if failures == 0 {
		failures = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := util.GetLogger()

	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a database fault
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			util.StoreBreakerTransitions.WithLabelValues(to.String()).Inc()
		},
	})
}
