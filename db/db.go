package db

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/amonks/catalog/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB represents our sqlite3 database file. Writes go through rw, which
// holds a single connection, so write transactions run one at a time.
// Reads outside of a transaction go through ro.
type DB struct {
	rw, ro *gorm.DB
	log    *zap.Logger
}

//go:embed schema.sql
var schema string

// Open returns a connection to a migrated sqlite3 database file on disk,
// creating the file and running migrations if necessary.
func Open(cfg config.Config, log *zap.Logger) (*DB, error) {
	filename := cfg.DatabasePath
	busy := strconv.Itoa(cfg.BusyTimeoutMS)

	rw, err := gorm.Open(sqlite.Open(dsn(filename, url.Values{
		"_foreign_keys": {"1"},
		"_journal_mode": {"WAL"},
		"_busy_timeout": {busy},
		"_txlock":       {"immediate"},
	})), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("error opening db file at '%s': %w", filename, err)
	}
	rwPool, err := rw.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting connection pool for '%s': %w", filename, err)
	}
	rwPool.SetMaxOpenConns(1)

	if err := rw.Exec(schema).Error; err != nil {
		rwPool.Close()
		return nil, fmt.Errorf("error migrating db at '%s': %w", filename, err)
	}

	ro, err := gorm.Open(sqlite.Open(dsn(filename, url.Values{
		"mode":          {"ro"},
		"_busy_timeout": {busy},
	})), gormConfig())
	if err != nil {
		rwPool.Close()
		return nil, fmt.Errorf("error opening read-only handle at '%s': %w", filename, err)
	}

	log.Debug("opened database", zap.String("path", filename))
	return &DB{rw: rw, ro: ro, log: log}, nil
}

func dsn(filename string, params url.Values) string {
	return "file:" + filename + "?" + params.Encode()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) Close() error {
	for _, g := range []*gorm.DB{db.ro, db.rw} {
		pool, err := g.DB()
		if err != nil {
			return err
		}
		if err := pool.Close(); err != nil {
			return fmt.Errorf("error closing database: %w", err)
		}
	}
	return nil
}

// Tx is one write transaction. Everything done through a Tx commits or
// rolls back together.
type Tx struct {
	tx  *gorm.DB
	log *zap.Logger
}

// Transaction runs fn in a write transaction, committing if fn returns nil
// and rolling back otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(*Tx) error) error {
	return db.rw.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Tx{tx: tx, log: db.log})
	})
}

// Savepoint runs fn inside a savepoint of t. If fn fails, its writes are
// undone and the rest of the transaction carries on.
func (t *Tx) Savepoint(fn func(*Tx) error) error {
	return t.tx.Transaction(func(sp *gorm.DB) error {
		return fn(&Tx{tx: sp, log: t.log})
	})
}

func (db *DB) read(ctx context.Context) *gorm.DB {
	return db.ro.WithContext(ctx)
}

// snapshot runs fn in a read transaction, so every statement fn issues
// sees the database as of the same commit.
func (db *DB) snapshot(ctx context.Context, fn func(*gorm.DB) error) error {
	return db.read(ctx).Transaction(fn)
}
