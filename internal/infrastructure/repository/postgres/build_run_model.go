package postgres

import (
	"database/sql"
	"time"
)

type buildRunInsertModel struct {
	RunID      string    `db:"run_id"`
	Season     string    `db:"season"`
	SeasonType string    `db:"season_type"`
	Mode       string    `db:"mode"`
	Tier       *string   `db:"tier"`
	Rows       int       `db:"row_count"`
	Covered    int       `db:"covered_players"`
	Active     int       `db:"active_players"`
	Ratio      float64   `db:"coverage_ratio"`
	Outcome    string    `db:"outcome"`
	Error      *string   `db:"last_error"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

type buildRunTableModel struct {
	ID         int64          `db:"id"`
	RunID      string         `db:"run_id"`
	Season     string         `db:"season"`
	SeasonType string         `db:"season_type"`
	Mode       string         `db:"mode"`
	Tier       sql.NullString `db:"tier"`
	Rows       int            `db:"row_count"`
	Covered    int            `db:"covered_players"`
	Active     int            `db:"active_players"`
	Ratio      float64        `db:"coverage_ratio"`
	Outcome    string         `db:"outcome"`
	Error      sql.NullString `db:"last_error"`
	StartedAt  time.Time      `db:"started_at"`
	FinishedAt time.Time      `db:"finished_at"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
