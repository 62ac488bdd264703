package sqlstore

import (
	"context"

	"github.com/dynastyops/valuekeeper/logging"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// Connection is the part of the pgx pool the per entity stores use.
type Connection interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ConnectionSource wraps the shared pool every store embeds.
type ConnectionSource struct {
	Connection Connection

	log  *logging.Logger
	pool *pgxpool.Pool
}

// NewConnectionSource connects to the database, retrying with exponential
// backoff until the configured window runs out. The returned source is
// shared by all stores.
func NewConnectionSource(ctx context.Context, log *logging.Logger, conf Config) (*ConnectionSource, error) {
	log = log.Named("sqlstore")
	log.SetLevel(conf.Level.Get())

	poolConfig, err := conf.ConnectionConfig.GetPoolConfig()
	if err != nil {
		return nil, errors.Wrap(err, "parsing connection config")
	}

	var pool *pgxpool.Pool
	connect := func() error {
		var err error
		pool, err = pgxpool.ConnectConfig(ctx, poolConfig)
		if err != nil {
			log.Warn("could not connect to the database, retrying",
				logging.String("host", conf.ConnectionConfig.Host),
				logging.Error(err),
			)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = conf.ConnectRetryMaxElapsed.Get()
	if err := backoff.Retry(connect, backoff.WithContext(policy, ctx)); err != nil {
		return nil, errors.Wrap(err, "connecting to the database")
	}

	return &ConnectionSource{
		Connection: pool,
		log:        log,
		pool:       pool,
	}, nil
}

// WithTransaction runs fn inside one transaction, committing on nil and
// rolling back on error.
func (s *ConnectionSource) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Connection.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Close releases the underlying pool.
func (s *ConnectionSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
