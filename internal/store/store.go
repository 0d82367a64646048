package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/arawak/showroom/internal/config"
)

var ErrNotFound = errors.New("not found")

// ER_BAD_DB_ERROR
const mysqlErrUnknownDatabase = 1049

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Open connects to MySQL and, when the target allows it, creates the
// database on first connect.
func Open(ctx context.Context, target config.Database) (*sqlx.DB, error) {
	db, err := connect(ctx, target.DSN)
	var myErr *mysql.MySQLError
	if err != nil && target.CreateIfMissing && errors.As(err, &myErr) && myErr.Number == mysqlErrUnknownDatabase {
		if err := createDatabase(ctx, target.DSN); err != nil {
			return nil, fmt.Errorf("create database %s: %w", target.Name, err)
		}
		db, err = connect(ctx, target.DSN)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

func connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func createDatabase(ctx context.Context, dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	name := cfg.DBName
	cfg.DBName = ""
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS `"+strings.ReplaceAll(name, "`", "``")+"`")
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
