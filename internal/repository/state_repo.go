package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"furnace_tempo"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	upsertStateSQL = `
		INSERT INTO furnace_state (
			id, label, status,
			sheet_length_mm, sheet_thickness_mm, heating_coefficient,
			sheets_in_furnace, sheets_manual, card_number, sheets_per_batch,
			remaining_sheets,
			heating_duration_s, heating_start_ms, pause_total_ms, pause_start_ms,
			downtime_start_ms, alarm_start_ms, alarm_silenced,
			updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label=excluded.label,
			status=excluded.status,
			sheet_length_mm=excluded.sheet_length_mm,
			sheet_thickness_mm=excluded.sheet_thickness_mm,
			heating_coefficient=excluded.heating_coefficient,
			sheets_in_furnace=excluded.sheets_in_furnace,
			sheets_manual=excluded.sheets_manual,
			card_number=excluded.card_number,
			sheets_per_batch=excluded.sheets_per_batch,
			remaining_sheets=excluded.remaining_sheets,
			heating_duration_s=excluded.heating_duration_s,
			heating_start_ms=excluded.heating_start_ms,
			pause_total_ms=excluded.pause_total_ms,
			pause_start_ms=excluded.pause_start_ms,
			downtime_start_ms=excluded.downtime_start_ms,
			alarm_start_ms=excluded.alarm_start_ms,
			alarm_silenced=excluded.alarm_silenced,
			updated_at=excluded.updated_at
	`

	selectStateCols = `
		SELECT id, label, status,
			sheet_length_mm, sheet_thickness_mm, heating_coefficient,
			sheets_in_furnace, sheets_manual, card_number, sheets_per_batch,
			remaining_sheets,
			heating_duration_s, heating_start_ms, pause_total_ms, pause_start_ms,
			downtime_start_ms, alarm_start_ms, alarm_silenced,
			updated_at
		FROM furnace_state
	`

	selectStateSQL    = selectStateCols + ` WHERE id=?`
	selectAllStateSQL = selectStateCols + ` ORDER BY id ASC`
)

// Save upserts the snapshot row for one furnace. The full row is replaced;
// cross-device reconciliation is last-write-wins at snapshot granularity.
func (r *StateSQLite) Save(ctx context.Context, state furnace_tempo.FurnaceState) error {
	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		state.ID,
		state.Label,
		state.Status,
		state.SheetLengthMM,
		state.SheetThicknessMM,
		state.HeatingCoefficient,
		state.SheetsInFurnace,
		state.SheetsManual,
		state.CardNumber,
		state.SheetsPerBatch,
		state.RemainingSheets,
		state.HeatingDurationS,
		state.HeatingStartMs,
		state.PauseTotalMs,
		state.PauseStartMs,
		state.DowntimeStartMs,
		state.AlarmStartMs,
		state.AlarmSilenced,
		tsUTC,
	)
	return err
}

// Load fetches one furnace's snapshot. Returns a zero state (empty ID) when
// the furnace has no row yet.
func (r *StateSQLite) Load(ctx context.Context, id string) (furnace_tempo.FurnaceState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, id)
	s, err := scanState(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return furnace_tempo.FurnaceState{}, nil // no state yet
		}
		return furnace_tempo.FurnaceState{}, err
	}
	return s, nil
}

// LoadAll returns the whole fleet ordered by furnace id.
func (r *StateSQLite) LoadAll(ctx context.Context) ([]furnace_tempo.FurnaceState, error) {
	rows, err := r.db.QueryContext(ctx, selectAllStateSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]furnace_tempo.FurnaceState, 0, 8)
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (furnace_tempo.FurnaceState, error) {
	var s furnace_tempo.FurnaceState
	if err := row.Scan(
		&s.ID,
		&s.Label,
		&s.Status,
		&s.SheetLengthMM,
		&s.SheetThicknessMM,
		&s.HeatingCoefficient,
		&s.SheetsInFurnace,
		&s.SheetsManual,
		&s.CardNumber,
		&s.SheetsPerBatch,
		&s.RemainingSheets,
		&s.HeatingDurationS,
		&s.HeatingStartMs,
		&s.PauseTotalMs,
		&s.PauseStartMs,
		&s.DowntimeStartMs,
		&s.AlarmStartMs,
		&s.AlarmSilenced,
		&s.UpdatedAt,
	); err != nil {
		return furnace_tempo.FurnaceState{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
