package repository

import (
	"context"
	"database/sql"
	"time"

	"furnace_tempo"
	"furnace_tempo/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*furnace_tempo.User, error)
}

// StateRepo is the per-furnace snapshot store: one row per furnace id,
// written through on every mutation (the "put"/"getOnce" of the remote store).
type StateRepo interface {
	Save(ctx context.Context, s furnace_tempo.FurnaceState) error
	Load(ctx context.Context, id string) (furnace_tempo.FurnaceState, error)
	LoadAll(ctx context.Context) ([]furnace_tempo.FurnaceState, error)
}

// JournalRepo is the append-only audit trail per furnace.
type JournalRepo interface {
	Append(ctx context.Context, e furnace_tempo.JournalEntry) error
	Last(ctx context.Context, furnaceID string) (furnace_tempo.JournalEntry, error)
	List(ctx context.Context, furnaceID string, from, to time.Time, typ string) ([]furnace_tempo.JournalEntry, error)
	Clear(ctx context.Context, furnaceID string) error
}

type Repository struct {
	StateRepo   StateRepo
	JournalRepo JournalRepo
	Auth        Authorization
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		StateRepo:   NewStateSQLite(sqlDB),
		JournalRepo: NewJournalSQLite(sqlDB),
		Auth:        NewUserRepository(sqlDB),
	}
}

// InitDB opens the SQLite file and applies the schema.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
