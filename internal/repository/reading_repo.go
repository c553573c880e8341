package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"power_monitor/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db}
}

var _ ReadingRepo = (*ReadingSQLite)(nil)

const dayLayout = "2006-01-02"

const (
	insertReadingSQL = `
		INSERT INTO sensor_readings (voltage, current, power, energy, frequency, pf, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectReadingsSQL = `SELECT id, voltage, current, power, energy, frequency, pf, timestamp FROM sensor_readings`

	// quarter-hour buckets: every UTC offset in use is a multiple of 15
	// minutes, so a bucket never straddles a local midnight
	selectAvailableBucketsSQL = `
		SELECT DISTINCT CAST(strftime('%s', timestamp) AS INTEGER) / 900 AS bucket
		FROM sensor_readings
		WHERE power > 0
	`
)

// Insert appends one reading and returns its row id. A zero Timestamp is
// replaced with the current time.
func (r *ReadingSQLite) Insert(ctx context.Context, rd models.Reading) (int64, error) {
	ts := rd.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	res, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.Voltage,
		rd.Current,
		rd.Power,
		rd.Energy,
		rd.Frequency,
		rd.PF,
		formatTimestamp(ts),
	)
	if err != nil {
		return 0, fmt.Errorf("insert reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading last insert id: %w", err)
	}
	return id, nil
}

// buildReadingQuery renders the SELECT for f. Exposed to tests through List.
func buildReadingQuery(f ReadingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.PositivePower {
		conds = append(conds, "power > 0")
	}
	if !f.From.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, formatTimestamp(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, formatTimestamp(f.To))
	}

	q := selectReadingsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Descending {
		q += " ORDER BY timestamp DESC, id DESC"
	} else {
		q += " ORDER BY timestamp ASC, id ASC"
	}
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return q, args
}

// List returns readings matching f.
func (r *ReadingSQLite) List(ctx context.Context, f ReadingFilter) ([]models.Reading, error) {
	q, args := buildReadingQuery(f)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		var (
			rd    models.Reading
			rawTS any
		)
		if err := rows.Scan(&rd.ID, &rd.Voltage, &rd.Current, &rd.Power, &rd.Energy, &rd.Frequency, &rd.PF, &rawTS); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		ts, err := scanTime(rawTS)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", rd.ID, err)
		}
		rd.Timestamp = ts
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const availableBucketSeconds = 900

// AvailableDates returns the distinct calendar days in loc (YYYY-MM-DD)
// holding at least one reading with power > 0, newest first. A nil loc means
// UTC.
func (r *ReadingSQLite) AvailableDates(ctx context.Context, loc *time.Location) ([]string, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows, err := r.db.QueryContext(ctx, selectAvailableBucketsSQL)
	if err != nil {
		return nil, fmt.Errorf("query available dates: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var bucket sql.NullInt64
		if err := rows.Scan(&bucket); err != nil {
			return nil, fmt.Errorf("scan available date: %w", err)
		}
		if !bucket.Valid {
			continue
		}
		day := time.Unix(bucket.Int64*availableBucketSeconds, 0).In(loc).Format(dayLayout)
		seen[day] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for day := range seen {
		out = append(out, day)
	}
	slices.Sort(out)
	slices.Reverse(out)
	return out, nil
}

// scanTime accepts whatever the driver hands back for a TIMESTAMP column.
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimestamp(t)
	case []byte:
		return parseTimestamp(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
