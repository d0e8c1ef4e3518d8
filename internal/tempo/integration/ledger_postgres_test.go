package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	tempo "wattcompare/internal/tempo/domain"
	temporepo "wattcompare/internal/tempo/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	return err == nil && exists
}

func resetSeason(t *testing.T, db *sql.DB, seasonID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "DELETE FROM tempo_days WHERE season_id = $1", seasonID); err != nil {
		t.Fatalf("reset days: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM tempo_season_quotas WHERE season_id = $1", seasonID); err != nil {
		t.Fatalf("reset quotas: %v", err)
	}
}

func TestLedgerRepository_AppendAndLoad(t *testing.T) {
	db := openDB(t)
	if !tableExists(db, "tempo_days") || !tableExists(db, "tempo_season_quotas") {
		t.Skip("missing tables; run migrations")
	}

	const seasonID = "it-2025"
	ctx := context.Background()
	resetSeason(t, db, seasonID)

	seed := []struct {
		color     tempo.Color
		remaining int
	}{
		{tempo.ColorBlue, 300},
		{tempo.ColorWhite, 43},
		{tempo.ColorRed, 22},
	}
	for _, q := range seed {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO tempo_season_quotas (season_id, color, remaining) VALUES ($1, $2, $3)",
			seasonID, string(q.color), q.remaining); err != nil {
			t.Fatalf("seed quota: %v", err)
		}
	}

	repo := temporepo.NewLedgerRepository(db)
	if err := repo.AppendDay(ctx, seasonID, "2026-01-12", tempo.ColorRed); err != nil {
		t.Fatalf("append day: %v", err)
	}

	ledger, err := repo.LoadSeason(ctx, seasonID)
	if err != nil {
		t.Fatalf("load season: %v", err)
	}
	color, ok := ledger.ColorOf("2026-01-12")
	if !ok || color != tempo.ColorRed {
		t.Errorf("got (%s, %t), expected recorded red day", color, ok)
	}
	if got := ledger.Quota().RemainingFor(tempo.ColorRed); got != 21 {
		t.Errorf("red quota = %d, expected 21 after one red day", got)
	}
}

func TestLedgerRepository_AppendDay_NeverOverwrites(t *testing.T) {
	db := openDB(t)
	if !tableExists(db, "tempo_days") || !tableExists(db, "tempo_season_quotas") {
		t.Skip("missing tables; run migrations")
	}

	const seasonID = "it-overwrite"
	ctx := context.Background()
	resetSeason(t, db, seasonID)

	if _, err := db.ExecContext(ctx,
		"INSERT INTO tempo_season_quotas (season_id, color, remaining) VALUES ($1, 'WHITE', 43)", seasonID); err != nil {
		t.Fatalf("seed quota: %v", err)
	}

	repo := temporepo.NewLedgerRepository(db)
	if err := repo.AppendDay(ctx, seasonID, "2026-02-03", tempo.ColorWhite); err != nil {
		t.Fatalf("first append: %v", err)
	}
	// Second append of the same day is a no-op: the color stays and the
	// quota is not decremented twice.
	if err := repo.AppendDay(ctx, seasonID, "2026-02-03", tempo.ColorBlue); err != nil {
		t.Fatalf("second append: %v", err)
	}

	ledger, err := repo.LoadSeason(ctx, seasonID)
	if err != nil {
		t.Fatalf("load season: %v", err)
	}
	color, _ := ledger.ColorOf("2026-02-03")
	if color != tempo.ColorWhite {
		t.Errorf("day was overwritten to %s", color)
	}
	if got := ledger.Quota().RemainingFor(tempo.ColorWhite); got != 42 {
		t.Errorf("white quota = %d, expected a single decrement", got)
	}
}

func TestLedgerRepository_RejectsUnknownColor(t *testing.T) {
	db := openDB(t)
	repo := temporepo.NewLedgerRepository(db)
	if err := repo.AppendDay(context.Background(), "it-bad", "2026-02-03", tempo.Color("PURPLE")); err == nil {
		t.Error("expected an error for an unknown color")
	}
}
