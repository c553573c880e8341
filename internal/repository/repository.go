package repository

import (
	"context"
	"database/sql"
	"time"

	"power_monitor/internal/models"
)

// timestampLayout is the TIMESTAMP text format written to SQLite. Fixed width
// UTC so that string order equals time order.
const timestampLayout = "2006-01-02 15:04:05"

// OperatorRepo stores the operators allowed to drive the switch.
type OperatorRepo interface {
	Create(ctx context.Context, username, passwordHash string) (int, error)
	ByUsername(ctx context.Context, username string) (*models.Operator, error)
}

// ReadingFilter narrows a history query. Zero values mean "no bound".
type ReadingFilter struct {
	From          time.Time
	To            time.Time
	PositivePower bool
	Descending    bool
	Limit         int
}

type ReadingRepo interface {
	Insert(ctx context.Context, r models.Reading) (int64, error)
	List(ctx context.Context, f ReadingFilter) ([]models.Reading, error)
	AvailableDates(ctx context.Context, loc *time.Location) ([]string, error)
}

type CommandRepo interface {
	Append(ctx context.Context, e models.CommandEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.CommandEvent, error)
}

type Repository struct {
	Readings  ReadingRepo
	Commands  CommandRepo
	Operators OperatorRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Readings:  NewReadingSQLite(db),
		Commands:  NewCommandSQLite(db),
		Operators: NewOperatorSQLite(db),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
