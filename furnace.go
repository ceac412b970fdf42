package furnace_tempo

import (
	"strings"
	"time"
)

// FurnaceLengthMM is the usable length of the rolling furnaces; the sheet
// capacity is derived from it unless overridden by hand.
const FurnaceLengthMM = 65000

// Furnace statuses. Exactly one timer may be running per status:
// the heating countdown in HEATING, the downtime clock in DOWNTIME.
const (
	StatusIdle     = "IDLE"
	StatusHeating  = "HEATING"
	StatusDowntime = "DOWNTIME"
)

// Journal entry types.
const (
	EntryProcessStarted  = "PROCESS_STARTED"
	EntrySheetDispensed  = "SHEET_DISPENSED"
	EntryDowntimeStarted = "DOWNTIME_STARTED"
	EntryDowntimeEnded   = "DOWNTIME_ENDED"
)

// FurnaceState is the full persisted snapshot of one furnace: configuration,
// process status and the wall-clock origins every countdown is derived from.
// Timer fields hold epoch milliseconds; zero means "not set".
type FurnaceState struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"`
	Status string `json:"status"` // IDLE | HEATING | DOWNTIME

	// Configuration, editable only while IDLE.
	SheetLengthMM      int     `json:"sheet_length_mm"`
	SheetThicknessMM   int     `json:"sheet_thickness_mm"`
	HeatingCoefficient float64 `json:"heating_coefficient"`
	SheetsInFurnace    int     `json:"sheets_in_furnace"`
	SheetsManual       bool    `json:"sheets_manual"` // capacity overridden by hand
	CardNumber         string  `json:"card_number"`
	SheetsPerBatch     int     `json:"sheets_per_batch"`

	RemainingSheets int `json:"remaining_sheets"`

	// Heating-cycle timing.
	HeatingDurationS int   `json:"heating_duration_s"`         // fixed at arm time
	HeatingStartMs   int64 `json:"heating_start_ms,omitempty"` // 0 = cycle not armed
	PauseTotalMs     int64 `json:"pause_total_ms,omitempty"`
	PauseStartMs     int64 `json:"pause_start_ms,omitempty"`

	// Downtime and alarm.
	DowntimeStartMs int64 `json:"downtime_start_ms,omitempty"`
	AlarmStartMs    int64 `json:"alarm_start_ms,omitempty"`
	AlarmSilenced   bool  `json:"alarm_silenced"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ProcessStarted reports whether a production process is active.
func (f *FurnaceState) ProcessStarted() bool {
	return f.Status == StatusHeating || f.Status == StatusDowntime
}

// InDowntime reports whether the furnace is in a declared downtime period.
func (f *FurnaceState) InDowntime() bool {
	return f.Status == StatusDowntime
}

// HeatingArmed reports whether a heating countdown has a start origin.
func (f *FurnaceState) HeatingArmed() bool {
	return f.HeatingStartMs != 0
}

// HeatingTimeLeft derives the remaining cycle seconds from the stored start
// origin and accumulated pause, never from a decrementing counter, so it is
// correct after restarts and device takeover. While a suspension is open the
// countdown is frozen at the suspension instant.
func (f *FurnaceState) HeatingTimeLeft(now time.Time) int {
	if !f.HeatingArmed() {
		return 0
	}
	ref := UnixMs(now)
	if f.PauseStartMs != 0 {
		ref = f.PauseStartMs
	}
	elapsed := (ref - f.HeatingStartMs - f.PauseTotalMs) / 1000
	left := int64(f.HeatingDurationS) - elapsed
	if left < 0 {
		return 0
	}
	return int(left)
}

// DowntimeElapsed derives the whole seconds spent in the current downtime.
func (f *FurnaceState) DowntimeElapsed(now time.Time) int {
	if f.DowntimeStartMs == 0 {
		return 0
	}
	elapsed := (UnixMs(now) - f.DowntimeStartMs) / 1000
	if elapsed < 0 {
		return 0
	}
	return int(elapsed)
}

// ConfigComplete reports whether every field required to start a process is
// filled in: all numeric parameters positive and a non-empty card number.
func (f *FurnaceState) ConfigComplete() bool {
	return f.SheetLengthMM > 0 &&
		f.SheetThicknessMM > 0 &&
		f.HeatingCoefficient > 0 &&
		f.SheetsInFurnace > 0 &&
		f.SheetsPerBatch > 0 &&
		strings.TrimSpace(f.CardNumber) != ""
}

// UnixMs converts a time to epoch milliseconds, the unit of all timer origins.
func UnixMs(t time.Time) int64 {
	return t.UnixMilli()
}

// JournalEntry is one immutable line of a furnace's audit trail.
type JournalEntry struct {
	EntryID    string    `json:"entry_id"`
	FurnaceID  string    `json:"furnace_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"` // PROCESS_STARTED | SHEET_DISPENSED | DOWNTIME_STARTED | DOWNTIME_ENDED
	CardNumber string    `json:"card_number,omitempty"`
}

// FurnaceStats are the report-tab totals derived from the journal.
type FurnaceStats struct {
	FurnaceID       string `json:"furnace_id"`
	TotalSheets     int    `json:"total_sheets"`
	DowntimeMinutes int    `json:"downtime_minutes"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}
