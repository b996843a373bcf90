package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"tietotesti/internal/infra/postgres/migrations"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Store combines the bun catalog and the pgx score table behind one Close.
type Store struct {
	*CatalogStore
	*ScoreStore

	db   *bun.DB
	pool *pgxpool.Pool
}

// Open connects both the bun database and the pgx pool to url.
func Open(ctx context.Context, url string) (*Store, error) {
	db := OpenBun(url)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect pgx pool: %w", err)
	}
	return &Store{
		CatalogStore: NewCatalogStore(db),
		ScoreStore:   NewScoreStore(pool),
		db:           db,
		pool:         pool,
	}, nil
}

func OpenBun(url string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (s *Store) Close() error {
	s.pool.Close()
	return s.db.Close()
}

// Migrate applies every pending schema migration.
func Migrate(ctx context.Context, db *bun.DB, log logrus.FieldLogger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if group.IsZero() {
		log.Info("database schema up to date")
		return nil
	}
	log.WithField("group", group.String()).Info("migrations applied")
	return nil
}
