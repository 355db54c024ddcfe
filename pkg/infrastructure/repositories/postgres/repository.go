package postgres

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/vsinha/supplyadvisor/pkg/domain/repositories"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/config"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/logging"
)

// Repository reads ERP data from PostgreSQL. It implements every read
// repository the advisor services need.
type Repository struct {
	DB     *sqlx.DB
	log    *slog.Logger
	schema string
}

// New connects to the database and applies pending migrations. The driver
// is either "postgres" (lib/pq) or "pgx".
func New(ctx context.Context, logger *slog.Logger, cfg config.DBConfig) (*Repository, error) {
	op := "postgres.New"
	log := logger.With(slog.String("op", op))

	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	conn, err := sqlx.ConnectContext(ctx, driver, cfg.DSN())
	if err != nil {
		log.Error("error connecting to database", logging.Err(err))
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		log.Error("error pinging database", logging.Err(err))
		conn.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	log.Debug("sqlx connected to database", slog.String("driver", driver))

	m := NewMigrator(conn, log, cfg.Schema)
	if err := m.Run(ctx); err != nil {
		log.Error("error running database migrations", logging.Err(err))
		conn.Close()
		return nil, fmt.Errorf("%s: migrate: %w", op, err)
	}

	return NewWithDB(conn, logger, cfg.Schema), nil
}

// NewWithDB wraps an existing connection without running migrations
func NewWithDB(db *sqlx.DB, logger *slog.Logger, schema string) *Repository {
	return &Repository{
		DB:     db,
		log:    logger.With(slog.String("component", "postgres")),
		schema: schema,
	}
}

// Ping checks the connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// Shutdown closes the database connection.
func (r *Repository) Shutdown(ctx context.Context) error {
	op := "Repository.Shutdown"
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit %s: %w", op, ctx.Err())
	default:
		if err := r.DB.Close(); err != nil {
			return fmt.Errorf("error exit %s: %w", op, err)
		}
		return nil
	}
}

var (
	_ repositories.BOMRepository              = (*Repository)(nil)
	_ repositories.DeliveryRepository         = (*Repository)(nil)
	_ repositories.SubstituteRepository       = (*Repository)(nil)
	_ repositories.ShortageDocumentRepository = (*Repository)(nil)
	_ repositories.UsageRepository            = (*Repository)(nil)
	_ repositories.StockRepository            = (*Repository)(nil)
	_ repositories.HolidayRepository          = (*Repository)(nil)
)
