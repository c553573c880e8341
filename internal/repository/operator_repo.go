package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"power_monitor/internal/models"
)

// ErrOperatorExists is returned by Create when the username is taken.
var ErrOperatorExists = errors.New("operator already exists")

type OperatorSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewOperatorSQLite(db *sql.DB) *OperatorSQLite {
	return &OperatorSQLite{db: db, now: time.Now}
}

var _ OperatorRepo = (*OperatorSQLite)(nil)

const (
	insertOperatorSQL = `INSERT INTO operators (username, password_hash, created_at) VALUES (?, ?, ?)`
	selectOperatorSQL = `SELECT id, username, password_hash, created_at FROM operators WHERE username = ?`
)

// Create stores a new operator and returns its id.
func (r *OperatorSQLite) Create(ctx context.Context, username, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertOperatorSQL, username, passwordHash, formatTimestamp(r.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrOperatorExists
		}
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("operator %q id: %w", username, err)
	}
	return int(id), nil
}

// ByUsername returns (nil, nil) when nobody is registered under username.
func (r *OperatorSQLite) ByUsername(ctx context.Context, username string) (*models.Operator, error) {
	var (
		op      models.Operator
		created any
	)
	err := r.db.QueryRowContext(ctx, selectOperatorSQL, username).
		Scan(&op.ID, &op.Username, &op.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select operator %q: %w", username, err)
	}
	if op.CreatedAt, err = scanTime(created); err != nil {
		return nil, fmt.Errorf("operator %q: %w", username, err)
	}
	return &op, nil
}

// isUniqueViolation matches the sqlite driver's constraint message; the
// driver's error type carries no exported fields to build one in tests.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
