// Package sqlitedriver opens sqlite files shared by the sqlite-backed stores.
package sqlitedriver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const DRIVER = "sqlite"

// BusyTimeout is how long a writer waits on a lock held by another handle
// to the same file before giving up with SQLITE_BUSY.
const BusyTimeout = 5 * time.Second

// DSN appends the per-connection pragmas to location. Several handles may
// open the same file, so every connection runs in WAL mode and waits out
// competing writers.
func DSN(location string) string {
	sep := "?"
	if strings.Contains(location, "?") {
		sep = "&"
	}

	return fmt.Sprintf(
		"%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		location,
		sep,
		BusyTimeout.Milliseconds(),
	)
}

// Open opens and pings the sqlite file at location.
func Open(ctx context.Context, location string) (*sql.DB, error) {
	conn, err := sql.Open(DRIVER, DSN(location))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// sqlite serialises writes; one connection per handle keeps the pragmas on it
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return conn, nil
}
