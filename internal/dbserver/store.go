// Package dbserver implements the database side of the chat system: a
// read-only SQL surface over SQLite, exposed to clients as MCP tools.
package dbserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database. Tool queries run on a connection pool
// pinned to query_only mode; writes are only possible through Exec.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	rodb *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL allows concurrent readers; one write connection is plenty.
	db.SetMaxOpenConns(2)

	// Every connection in this pool carries query_only, so no statement
	// reaching it can write, whatever its shape.
	rodsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_pragma=query_only(1)", path)
	rodb, err := sql.Open("sqlite", rodsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open read-only db: %w", err)
	}
	rodb.SetMaxOpenConns(2)

	return &Store{db: db, rodb: rodb}, nil
}

func (s *Store) Close() error {
	roErr := s.rodb.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	return roErr
}

// ExecuteQuery runs a SELECT statement on the query_only pool and
// renders the result set as text: a header row of column names, then one
// line per row. The prefix check gives a friendly error for obvious
// non-SELECT statements; the pool's query_only pragma is what actually
// stops writes, including WITH-prefixed ones.
func (s *Store) ExecuteQuery(ctx context.Context, query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", fmt.Errorf("query is empty")
	}

	lowered := strings.ToLower(trimmed)
	if !strings.HasPrefix(lowered, "select") && !strings.HasPrefix(lowered, "with") {
		return "", fmt.Errorf("read-only access: only SELECT queries are allowed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.rodb.QueryContext(ctx, trimmed)
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("read columns: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, " | "))

	values := make([]any, len(cols))
	scanners := make([]any, len(cols))
	for i := range values {
		scanners[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(scanners...); err != nil {
			return "", fmt.Errorf("scan row: %w", err)
		}
		fields := make([]string, len(cols))
		for i, v := range values {
			fields[i] = renderValue(v)
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(fields, " | "))
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate rows: %w", err)
	}

	b.WriteString(fmt.Sprintf("\n(%d rows)", count))
	return b.String(), nil
}

// ListTables returns the user table names in the database.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.rodb.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DescribeTable returns one line per column: name, type, and nullability.
func (s *Store) DescribeTable(ctx context.Context, table string) (string, error) {
	names, err := s.ListTables(ctx)
	if err != nil {
		return "", err
	}
	known := false
	for _, n := range names {
		if n == table {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("table %q not found", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Table name validated against sqlite_master above; PRAGMA takes no
	// placeholders.
	rows, err := s.rodb.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return "", fmt.Errorf("describe table: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("column | type | nullable")
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return "", fmt.Errorf("scan column: %w", err)
		}
		nullable := "yes"
		if notNull != 0 {
			nullable = "no"
		}
		b.WriteString(fmt.Sprintf("\n%s | %s | %s", name, typ, nullable))
	}
	return b.String(), rows.Err()
}

// Exec runs an arbitrary statement, bypassing the read-only guard. Used
// for seeding test and demo data, never exposed as a tool.
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, stmt, args...)
	return err
}

func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
