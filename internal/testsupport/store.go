package testsupport

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/arawak/showroom/internal/store"
)

// schema mirrors the MySQL migrations in sqlite syntax.
var schema = []string{
	`CREATE TABLE designs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(255) NOT NULL,
		image VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(255) NOT NULL,
		video_file VARCHAR(255) NOT NULL,
		youtube_url VARCHAR(500),
		youtube_video_id VARCHAR(100),
		description TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE admin (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL
	)`,
}

// MustOpenDB opens a private in-memory database with the showroom schema
// and registers cleanup.
func MustOpenDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:?_time_format=sqlite")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

// MustOpenStore opens a store.Store over MustOpenDB.
func MustOpenStore(t testing.TB) *store.Store {
	t.Helper()
	return store.New(MustOpenDB(t))
}
