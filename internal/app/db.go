package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/nba-gamelogs/internal/config"
	"github.com/riskibarqy/nba-gamelogs/internal/platform/dburl"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbConnectTimeout = 10 * time.Second

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := dburl.Normalize(cfg.LedgerDBURL, cfg.DBDisablePreparedBinary)

	connectCtx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
	defer cancel()

	db, err := otelsqlx.ConnectContext(connectCtx, "postgres", dsn,
		otelsql.WithDBName(dburl.Name(dsn)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(dburl.TraceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("connect ledger database: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
