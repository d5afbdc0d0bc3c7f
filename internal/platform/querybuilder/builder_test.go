package querybuilder

import (
	"strings"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("run_id", "outcome").
		From("build_runs").
		Where(Eq("run_id", "r1"), Eq("season", "2024-25")).
		OrderBy("season_type").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT run_id, outcome FROM build_runs WHERE run_id = $1 AND season = $2 ORDER BY season_type LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "r1" || args[1] != "2024-25" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderRequiresTable(t *testing.T) {
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("build_runs").
		Columns("run_id", "outcome").
		Values("r1", "published").
		Values("r2", "failed").
		Suffix("ON CONFLICT (run_id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO build_runs (run_id, outcome) VALUES ($1, $2), ($3, $4) ON CONFLICT (run_id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "r2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderRejectsShortRow(t *testing.T) {
	_, _, err := InsertInto("build_runs").Columns("run_id", "outcome").Values("r1").ToSQL()
	if err == nil {
		t.Fatalf("expected error for mismatched row length")
	}
}

func TestInsertModel(t *testing.T) {
	type model struct {
		RunID   string  `db:"run_id"`
		Tier    *string `db:"tier"`
		Ignored string  `db:"-"`
		local   string
	}

	query, args, err := InsertModel("build_runs", model{RunID: "r1", local: "x"}, "")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}
	if query != "INSERT INTO build_runs (run_id, tier) VALUES ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[0] != "r1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("build_runs", (*model)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
}

func TestColumns(t *testing.T) {
	type row struct {
		ID        int64  `db:"id"`
		RunID     string `db:"run_id,omitempty"`
		Untagged  string
		CreatedAt string `db:"created_at"`
	}

	cols, err := Columns((*row)(nil))
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if strings.Join(cols, ",") != "id,run_id,created_at" {
		t.Fatalf("unexpected columns: %v", cols)
	}

	if _, err := Columns(42); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
}
