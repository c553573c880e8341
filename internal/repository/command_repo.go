package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"power_monitor/internal/models"

	"github.com/google/uuid"
)

type CommandSQLite struct {
	db *sql.DB
}

func NewCommandSQLite(db *sql.DB) *CommandSQLite { return &CommandSQLite{db: db} }

var _ CommandRepo = (*CommandSQLite)(nil)

const insertCommandSQL = `
		INSERT INTO switch_commands (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`

// Append inserts a command log entry. Missing EventID/OccurredAt are filled in.
func (r *CommandSQLite) Append(ctx context.Context, e models.CommandEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertCommandSQL,
		e.EventID,
		formatTimestamp(e.OccurredAt),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("insert command event: %w", err)
	}
	return nil
}

// List returns entries filtered by [from, to] (inclusive) and/or type, oldest first.
func (r *CommandSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.CommandEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, formatTimestamp(from))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, formatTimestamp(to))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, occurred_at, type, message, meta FROM switch_commands`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query command events: %w", err)
	}
	defer rows.Close()

	out := make([]models.CommandEvent, 0, 16)
	for rows.Next() {
		var (
			ev      models.CommandEvent
			rawTS   any
			metaStr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &rawTS, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, fmt.Errorf("scan command event: %w", err)
		}
		if ev.OccurredAt, err = scanTime(rawTS); err != nil {
			return nil, fmt.Errorf("command event %s: %w", ev.EventID, err)
		}

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
