package service

import (
	"context"
	"time"

	"furnace_tempo"
	"furnace_tempo/internal/logger"
	"furnace_tempo/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control exposes the per-furnace state machine: configuration edits while
// idle, the IDLE→HEATING start transition, reset, and the downtime
// transitions with alarm silencing.
type Control interface {
	EnsureFleet(ctx context.Context, seeds []FurnaceSeed) error
	UpdateConfig(ctx context.Context, furnaceID string, p ConfigParams) error
	Start(ctx context.Context, furnaceID string) error
	Reset(ctx context.Context, furnaceID string) error
	BeginDowntime(ctx context.Context, furnaceID string) error
	EndDowntime(ctx context.Context, furnaceID string) error
	SilenceAlarm(ctx context.Context, furnaceID string) error
}

// Monitoring exposes read-only snapshots with derived countdowns and displays.
type Monitoring interface {
	GetSnapshot(ctx context.Context, furnaceID string) (Snapshot, error)
	GetFleet(ctx context.Context) ([]Snapshot, error)
}

// Journal exposes the append-only audit trail with filtering, the
// journal-derived tempo statistics, and the admin-gated clear.
type Journal interface {
	List(ctx context.Context, furnaceID string, f LogFilter) ([]furnace_tempo.JournalEntry, error)
	Stats(ctx context.Context, furnaceID string) (furnace_tempo.FurnaceStats, error)
	Clear(ctx context.Context, furnaceID, adminPassword string) error
}

// Fleet re-evaluates alarms across all furnaces after a downtime transition.
type Fleet interface {
	Sweep(ctx context.Context) error
}

// Ticker runs the periodic loop that fires countdown expiries and alarm
// escalation. Stop via context cancellation in main() for graceful shutdown.
type Ticker interface {
	Run(ctx context.Context, tick time.Duration)
}

// FurnaceSeed declares one furnace of the configured fleet.
type FurnaceSeed struct {
	ID    string
	Label string
}

// ConfigParams carries one or more field edits. Nil pointers mean
// "not edited"; a sheet-length edit triggers the capacity recompute, a direct
// capacity edit marks it manual, a batch-size edit resets the sheet counter.
type ConfigParams struct {
	SheetLengthMM      *int
	SheetThicknessMM   *int
	HeatingCoefficient *float64
	SheetsInFurnace    *int
	CardNumber         *string
	SheetsPerBatch     *int
}

// LogFilter supports journal filtering by time range and entry type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", PROCESS_STARTED, SHEET_DISPENSED, DOWNTIME_STARTED, DOWNTIME_ENDED
}

// Config carries the service-level knobs loaded in main().
type Config struct {
	AdminPassword string
	SigningKey    string
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Control
	Monitoring
	Journal
	Fleet
	Ticker
	Authorization
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, log *logger.Logger, cfg Config) *Service {
	journal := NewJournalService(repos.JournalRepo, repos.StateRepo, cfg.AdminPassword)
	fleet := NewFleetService(repos.StateRepo, log)
	return &Service{
		Control:       NewControlService(repos.StateRepo, journal, fleet, log),
		Monitoring:    NewMonitoringService(repos.StateRepo),
		Journal:       journal,
		Fleet:         fleet,
		Ticker:        NewTickerService(repos.StateRepo, journal, log),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey),
	}
}
