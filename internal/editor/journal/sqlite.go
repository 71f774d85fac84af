package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ============================================================
// Operation Journal
// ============================================================

// MemoryDSN: база только в памяти процесса, после рестарта ничего не остаётся.
const MemoryDSN = ":memory:"

// ErrPersistentDSN: журнал не пишет на диск.
var ErrPersistentDSN = errors.New("journal DSN must be in-memory")

const schema = `
CREATE TABLE IF NOT EXISTS operations (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT    NOT NULL,
    op         TEXT    NOT NULL,
    detail     TEXT    NOT NULL DEFAULT '',
    created_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_operations_session ON operations (session_id, id);
`

type Entry struct {
	ID        int64  `json:"id"`
	SessionID string `json:"sessionId"`
	Op        string `json:"op"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type Journal struct {
	db *sql.DB
}

// Open открывает журнал и создаёт схему.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if !IsMemoryDSN(dsn) {
		return nil, fmt.Errorf("%w: %q", ErrPersistentDSN, dsn)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// :memory: живёт, пока жив единственный коннект
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// IsMemoryDSN сообщает, что база живёт только в памяти: ":memory:",
// "file::memory:" или URI с mode=memory.
func IsMemoryDSN(dsn string) bool {
	if dsn == MemoryDSN {
		return true
	}
	if !strings.HasPrefix(dsn, "file:") {
		return false
	}
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == MemoryDSN {
		return true
	}
	for _, param := range strings.Split(query, "&") {
		if param == "mode=memory" {
			return true
		}
	}
	return false
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record добавляет запись об операции в сессии.
func (j *Journal) Record(ctx context.Context, sessionID, op, detail string) error {
	_, err := j.db.ExecContext(ctx, `
        INSERT INTO operations (session_id, op, detail)
        VALUES (?, ?, ?)
    `, sessionID, op, detail)
	if err != nil {
		return fmt.Errorf("record %s: %w", op, err)
	}
	return nil
}

// List возвращает последние limit записей сессии, от старых к новым.
func (j *Journal) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := j.db.QueryContext(ctx, `
        SELECT id, session_id, op, detail, created_at FROM (
            SELECT id, session_id, op, detail, created_at
            FROM operations
            WHERE session_id = ?
            ORDER BY id DESC
            LIMIT ?
        ) ORDER BY id ASC
    `, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Op, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Forget удаляет все записи сессии.
func (j *Journal) Forget(ctx context.Context, sessionID string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM operations WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	return nil
}
