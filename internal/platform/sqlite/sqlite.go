// Package sqlite opens the SQLite database owned by the community bot.
// The bot owns the schema and its migrations; this service only reads and
// updates review columns, so no DDL lives here.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"database/sql"

	_ "modernc.org/sqlite"
)

// Open connects to the bot database file and verifies the connection.
// The busy timeout keeps concurrent writes from the bot process from
// surfacing as immediate SQLITE_BUSY errors.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite handles one writer at a time; a small pool avoids lock churn.
	db.SetMaxOpenConns(4)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return db, nil
}
