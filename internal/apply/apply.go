// Package apply executes a generated update-statement file against the
// product database.
package apply

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// ErrNoStatements is returned when there is nothing to execute.
var ErrNoStatements = errors.New("no statements to apply")

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// ParseStatements returns the non-empty lines of r that are not SQL line
// comments. The optimizer writes exactly one statement per line.
func ParseStatements(r io.Reader) ([]string, error) {
	var stmts []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		stmts = append(stmts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read statements: %w", err)
	}
	return stmts, nil
}

// Result counts what a run changed.
type Result struct {
	Statements   int
	RowsAffected int64
	Unmatched    int
}

// Run executes stmts in one transaction. The first failing statement rolls
// everything back. Statements that match no row are counted, not failed:
// an image may exist for a product that was removed since.
func Run(ctx context.Context, db *sql.DB, stmts []string, logger *slog.Logger) (*Result, error) {
	if len(stmts) == 0 {
		return nil, ErrNoStatements
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res := &Result{}
	for i, stmt := range stmts {
		r, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			return nil, fmt.Errorf("statement %d %q: %w", i+1, stmt, err)
		}
		n, err := r.RowsAffected()
		if err == nil {
			res.RowsAffected += n
			if n == 0 {
				res.Unmatched++
				logger.WarnContext(ctx, "statement matched no rows", "line", i+1, "statement", stmt)
			}
		}
		res.Statements++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	logger.InfoContext(ctx, "statements applied",
		"statements", res.Statements,
		"rows", res.RowsAffected,
		"unmatched", res.Unmatched,
	)
	return res, nil
}
