package service

import (
	"context"
	"fmt"
	"time"

	"furnace_tempo"
	"furnace_tempo/internal/repository"
)

// Status indicator values as the UI renders them.
const (
	IndicatorInactive = "inactive"
	IndicatorActive   = "active"
	IndicatorDowntime = "downtime"
)

// Snapshot is a furnace state enriched with the derived values the UI
// renders: countdowns re-derived from the stored origins at read time,
// display strings and the status indicator.
type Snapshot struct {
	furnace_tempo.FurnaceState

	HeatingTimeLeftS int    `json:"heating_time_left_s"`
	DowntimeElapsedS int    `json:"downtime_elapsed_s"`
	HeatingDisplay   string `json:"heating_display"`  // mm:ss
	DowntimeDisplay  string `json:"downtime_display"` // hh:mm:ss
	EstimatedTempo   string `json:"estimated_tempo"`  // mm:ss or --:--
	Indicator        string `json:"indicator"`        // inactive | active | downtime
	AlarmActive      bool   `json:"alarm_active"`
}

type MonitoringService struct {
	stateRepo repository.StateRepo
	now       func() time.Time
}

func NewMonitoringService(stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, now: time.Now}
}

// GetSnapshot returns the enriched snapshot of one furnace.
func (s *MonitoringService) GetSnapshot(ctx context.Context, furnaceID string) (Snapshot, error) {
	st, err := s.stateRepo.Load(ctx, furnaceID)
	if err != nil {
		return Snapshot{}, err
	}
	if st.ID == "" {
		return Snapshot{}, ErrUnknownFurnace
	}
	return snapshotOf(st, s.now()), nil
}

// GetFleet returns enriched snapshots for the whole fleet.
func (s *MonitoringService) GetFleet(ctx context.Context) ([]Snapshot, error) {
	states, err := s.stateRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Snapshot, 0, len(states))
	for _, st := range states {
		out = append(out, snapshotOf(st, now))
	}
	return out, nil
}

func snapshotOf(st furnace_tempo.FurnaceState, now time.Time) Snapshot {
	left := st.HeatingTimeLeft(now)
	elapsed := st.DowntimeElapsed(now)
	return Snapshot{
		FurnaceState:     st,
		HeatingTimeLeftS: left,
		DowntimeElapsedS: elapsed,
		HeatingDisplay:   formatMMSS(left),
		DowntimeDisplay:  formatHHMMSS(elapsed),
		EstimatedTempo:   estimatedTempo(st),
		Indicator:        indicatorOf(st),
		AlarmActive:      st.AlarmStartMs != 0 && !st.AlarmSilenced,
	}
}

func indicatorOf(st furnace_tempo.FurnaceState) string {
	switch {
	case st.InDowntime():
		return IndicatorDowntime
	case !st.ProcessStarted() || st.RemainingSheets == 0:
		return IndicatorInactive
	default:
		return IndicatorActive
	}
}

// estimatedTempo previews the cycle duration for the current configuration
// without starting a process.
func estimatedTempo(st furnace_tempo.FurnaceState) string {
	if st.SheetThicknessMM <= 0 || st.HeatingCoefficient <= 0 || st.SheetsInFurnace <= 0 {
		return "--:--"
	}
	seconds := ComputeCycleDuration(st.SheetThicknessMM, st.HeatingCoefficient, st.SheetsInFurnace)
	return formatMMSS(seconds)
}

func formatMMSS(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func formatHHMMSS(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
