package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	database, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		// Clean up test data
		database.conn.Exec("DELETE FROM shot_events")
		database.conn.Exec("DELETE FROM game_badges")
		database.conn.Exec("DELETE FROM games")
		database.conn.Exec("DELETE FROM kv_store")
		database.Close()
	})
	return database
}

func newGame(t *testing.T, database *DB, sessionID string) string {
	t.Helper()
	id := uuid.NewString()
	if err := database.CreateGame(id, sessionID, 30000); err != nil {
		t.Fatalf("CreateGame() error: %v", err)
	}
	return id
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	database, err := Connect(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	if err == nil {
		database.Close()
		t.Fatal("Connect() to a closed port should fail")
	}
	if database != nil {
		t.Error("Connect() should not return a pool when the ping fails")
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	tables := []string{"kv_store", "games", "shot_events", "game_badges"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}

	// Migrations are idempotent.
	if err := database.Migrate(); err != nil {
		t.Errorf("second Migrate() error: %v", err)
	}
}

func TestKV_GetSet(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	if _, ok, err := database.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
	}

	if err := database.Set(ctx, "targetshot-leaderboard", `[{"score":3}]`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := database.Set(ctx, "targetshot-leaderboard", `[{"score":4}]`); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}

	v, ok, err := database.Get(ctx, "targetshot-leaderboard")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if v != `[{"score":4}]` {
		t.Errorf("Get() = %q, want the last written value", v)
	}
}

func TestCreateAndEndGame(t *testing.T) {
	database := getTestDB(t)

	gameID := uuid.NewString()
	if err := database.CreateGame(gameID, "session-1", 30000); err != nil {
		t.Fatalf("CreateGame() error: %v", err)
	}

	if err := database.EndGame(gameID, 17); err != nil {
		t.Fatalf("EndGame() error: %v", err)
	}

	g, err := database.GetGame(gameID)
	if err != nil {
		t.Fatalf("GetGame() error: %v", err)
	}
	if g.EndedAt == nil {
		t.Error("ended_at should be set after EndGame()")
	}
	if g.FinalScore == nil || *g.FinalScore != 17 {
		t.Errorf("final score = %v, want 17", g.FinalScore)
	}
	if g.SessionID != "session-1" || g.RoundDurationMs != 30000 {
		t.Errorf("game = %+v", g)
	}
}

func TestAbandonGame(t *testing.T) {
	database := getTestDB(t)
	open := newGame(t, database, "session-5")
	done := newGame(t, database, "session-5")
	if err := database.EndGame(done, 9); err != nil {
		t.Fatalf("EndGame() error: %v", err)
	}

	for _, id := range []string{open, done} {
		if err := database.AbandonGame(id); err != nil {
			t.Fatalf("AbandonGame() error: %v", err)
		}
	}

	g, err := database.GetGame(open)
	if err != nil {
		t.Fatalf("GetGame() error: %v", err)
	}
	if !g.Abandoned || g.EndedAt == nil || g.FinalScore != nil {
		t.Errorf("abandoned game = %+v", g)
	}

	g, err = database.GetGame(done)
	if err != nil {
		t.Fatalf("GetGame() error: %v", err)
	}
	if g.Abandoned || g.FinalScore == nil || *g.FinalScore != 9 {
		t.Errorf("finished game should be left alone, got %+v", g)
	}
}

func TestBatchRecordShots(t *testing.T) {
	database := getTestDB(t)

	gameID := newGame(t, database, "session-2")

	now := time.Now()
	id, kind, reaction := 4, "ufo", 420
	events := []ShotEvent{
		{GameID: gameID, Hit: true, TargetID: &id, TargetKind: &kind, X: 140, Y: 140, ScoreAfter: 1, ReactionMs: &reaction, ShotAt: now},
		{GameID: gameID, Hit: false, X: 10, Y: 10, ScoreAfter: 0, ShotAt: now},
		{GameID: gameID, Hit: false, X: 20, Y: 20, ScoreAfter: 0, ShotAt: now},
	}

	if err := database.BatchRecordShots(events); err != nil {
		t.Fatalf("BatchRecordShots() error: %v", err)
	}

	var count int
	database.conn.QueryRow("SELECT COUNT(*) FROM shot_events WHERE game_id = $1", gameID).Scan(&count)
	if count != 3 {
		t.Errorf("shot count = %d, want 3", count)
	}
}

func TestRecordShot(t *testing.T) {
	database := getTestDB(t)
	gameID := newGame(t, database, "session-3")

	err := database.RecordShot(ShotEvent{GameID: gameID, X: 1, Y: 2, ShotAt: time.Now()})
	if err != nil {
		t.Fatalf("RecordShot() error: %v", err)
	}
}

func TestAwardBadge(t *testing.T) {
	database := getTestDB(t)
	gameID := newGame(t, database, "session-4")

	if err := database.AwardBadge(gameID, "flawless"); err != nil {
		t.Fatalf("AwardBadge() error: %v", err)
	}
	// Awarding twice is a no-op.
	if err := database.AwardBadge(gameID, "flawless"); err != nil {
		t.Fatalf("AwardBadge() repeat error: %v", err)
	}

	badges, err := database.GetGameBadges(gameID)
	if err != nil {
		t.Fatalf("GetGameBadges() error: %v", err)
	}
	if len(badges) != 1 || badges[0] != "flawless" {
		t.Errorf("badges = %v, want [flawless]", badges)
	}
}
