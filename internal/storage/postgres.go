package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Options configura a conexão com o PostgreSQL
type Options struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxConns     int32
	MinConns     int32
	ConnectTries int
}

// DSN builds a postgres:// connection string understood by both pgx and lib/pq.
func (o Options) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.User, o.Password),
		Host:     o.Host + ":" + o.Port,
		Path:     "/" + o.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// InitDB abre o pool de conexões e espera o banco ficar disponível
func InitDB(ctx context.Context, opts Options, logger *zap.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	tries := opts.ConnectTries
	if tries <= 0 {
		tries = 30
	}

	for i := 0; i < tries; i++ {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("✅ Connected to storefront database with connection pool",
				zap.String("host", opts.Host),
				zap.String("database", opts.Name),
			)
			return pool, nil
		}
		logger.Info("⏳ Waiting for database...", zap.Int("attempt", i+1), zap.Int("of", tries))

		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts", tries)
}
