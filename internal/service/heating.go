package service

import (
	"math"
	"time"

	"furnace_tempo"
)

// ComputeCycleDuration returns the per-sheet heating time in whole seconds:
// thickness * coefficient gives minutes of heat per sheet, divided across the
// sheets sitting in the furnace. Callers must guard sheetsInFurnace > 0.
func ComputeCycleDuration(thicknessMM int, coefficient float64, sheetsInFurnace int) int {
	minutes := float64(thicknessMM) * coefficient / float64(sheetsInFurnace)
	return int(math.Round(minutes * 60))
}

// armHeating starts a fresh cycle countdown originating at now.
func armHeating(st *furnace_tempo.FurnaceState, durationS int, now time.Time) {
	st.HeatingDurationS = durationS
	st.HeatingStartMs = furnace_tempo.UnixMs(now)
	st.PauseTotalMs = 0
	st.PauseStartMs = 0
}

// stopHeating clears the countdown origin so the cycle no longer runs.
// The zero display follows from HeatingTimeLeft on an unarmed cycle.
func stopHeating(st *furnace_tempo.FurnaceState) {
	st.HeatingDurationS = 0
	st.HeatingStartMs = 0
	st.PauseTotalMs = 0
	st.PauseStartMs = 0
}

// suspendHeating records the suspension instant when downtime interrupts an
// armed cycle. The countdown origin is kept; elapsed pause is folded in on
// resume so the sheet still dispenses after the correct remaining duration.
func suspendHeating(st *furnace_tempo.FurnaceState, now time.Time) {
	if st.HeatingArmed() && st.PauseStartMs == 0 {
		st.PauseStartMs = furnace_tempo.UnixMs(now)
	}
}

// resumeHeating folds the finished suspension into the accumulated pause.
func resumeHeating(st *furnace_tempo.FurnaceState, now time.Time) {
	if st.PauseStartMs != 0 {
		st.PauseTotalMs += furnace_tempo.UnixMs(now) - st.PauseStartMs
		st.PauseStartMs = 0
	}
}

// advanceHeating evaluates one countdown expiry. No sheet is dispensed
// unless the furnace is HEATING with an armed cycle whose derived time left
// is zero. On dispense the next cycle is recomputed from the current
// configuration and re-armed, unless the batch drained (stop, no re-arm) or
// the recomputed duration degenerated to <= 0 (stop, zero display).
func advanceHeating(st *furnace_tempo.FurnaceState, now time.Time) (dispensed, degenerate bool) {
	if st.Status != furnace_tempo.StatusHeating || !st.HeatingArmed() {
		return false, false
	}
	if st.HeatingTimeLeft(now) > 0 {
		return false, false
	}

	if st.RemainingSheets <= 0 {
		// Drained while armed; normally the cycle stops at the last
		// dispense, this is a recovery path for restored snapshots.
		stopHeating(st)
		return false, false
	}

	st.RemainingSheets--
	dispensed = true

	if st.RemainingSheets == 0 {
		stopHeating(st)
		return dispensed, false
	}

	if st.SheetsInFurnace <= 0 {
		stopHeating(st)
		return dispensed, true
	}
	next := ComputeCycleDuration(st.SheetThicknessMM, st.HeatingCoefficient, st.SheetsInFurnace)
	if next <= 0 {
		stopHeating(st)
		return dispensed, true
	}
	armHeating(st, next, now)
	return dispensed, false
}
