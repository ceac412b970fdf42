package service

import (
	"time"

	"furnace_tempo"
)

// AlarmThresholdS is the continuous downtime after which the alarm fires.
const AlarmThresholdS = 60

// beginDowntime moves the furnace into downtime at now: records the downtime
// origin, wipes any previous alarm/silence state and suspends the heating
// countdown. Guards are the caller's responsibility.
func beginDowntime(st *furnace_tempo.FurnaceState, now time.Time) {
	st.Status = furnace_tempo.StatusDowntime
	st.DowntimeStartMs = furnace_tempo.UnixMs(now)
	st.AlarmStartMs = 0
	st.AlarmSilenced = false
	suspendHeating(st, now)
}

// endDowntime closes the downtime period: clears alarm state, folds the
// suspension into the heating pause and returns the furnace to HEATING.
// A drained furnace stays HEATING with no armed cycle.
func endDowntime(st *furnace_tempo.FurnaceState, now time.Time) {
	st.AlarmStartMs = 0
	st.AlarmSilenced = false
	resumeHeating(st, now)
	st.DowntimeStartMs = 0
	st.Status = furnace_tempo.StatusHeating
}

// escalateAlarm fires the alarm once continuous downtime reaches the
// threshold, unless it already fired or was silenced. Returns true when the
// alarm was triggered by this call.
func escalateAlarm(st *furnace_tempo.FurnaceState, now time.Time) bool {
	if !st.InDowntime() || st.AlarmStartMs != 0 || st.AlarmSilenced {
		return false
	}
	if st.DowntimeElapsed(now) < AlarmThresholdS {
		return false
	}
	st.AlarmStartMs = furnace_tempo.UnixMs(now)
	return true
}

// silenceAlarm acknowledges the alarm for the remainder of the current
// downtime period. The flag resets on the next beginDowntime.
func silenceAlarm(st *furnace_tempo.FurnaceState) {
	st.AlarmStartMs = 0
	st.AlarmSilenced = true
}

// clearAlarm force-clears alarm state without the sticky silence, used by the
// fleet sweep when no furnace remains in downtime.
func clearAlarm(st *furnace_tempo.FurnaceState) bool {
	if st.AlarmStartMs == 0 && !st.AlarmSilenced {
		return false
	}
	st.AlarmStartMs = 0
	st.AlarmSilenced = false
	return true
}
