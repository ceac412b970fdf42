package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"furnace_tempo"
)

func TestSnapshotOf_DerivesCountdownsAndDisplays(t *testing.T) {
	st := furnace_tempo.FurnaceState{
		ID:                 "rp2",
		Status:             furnace_tempo.StatusHeating,
		SheetThicknessMM:   10,
		HeatingCoefficient: 0.75,
		SheetsInFurnace:    50,
		RemainingSheets:    4,
	}
	armHeating(&st, 150, baseTime)

	snap := snapshotOf(st, baseTime.Add(30*time.Second))
	if snap.HeatingTimeLeftS != 120 {
		t.Fatalf("time left = %d, want 120", snap.HeatingTimeLeftS)
	}
	if snap.HeatingDisplay != "02:00" {
		t.Fatalf("heating display = %q, want 02:00", snap.HeatingDisplay)
	}
	if snap.Indicator != IndicatorActive {
		t.Fatalf("indicator = %q, want active", snap.Indicator)
	}
	if snap.DowntimeElapsedS != 0 || snap.DowntimeDisplay != "00:00:00" {
		t.Fatalf("downtime values without downtime: %d %q", snap.DowntimeElapsedS, snap.DowntimeDisplay)
	}
	// 10mm * 0.75 / 50 = 9s per sheet
	if snap.EstimatedTempo != "00:09" {
		t.Fatalf("estimated tempo = %q, want 00:09", snap.EstimatedTempo)
	}
}

func TestSnapshotOf_Downtime(t *testing.T) {
	st := furnace_tempo.FurnaceState{ID: "rp2", Status: furnace_tempo.StatusHeating, RemainingSheets: 2}
	armHeating(&st, 200, baseTime.Add(-20*time.Second)) // 180s left at downtime start
	beginDowntime(&st, baseTime)
	escalateAlarm(&st, baseTime.Add(time.Minute))

	// the heating countdown holds still for every read taken during downtime
	early := snapshotOf(st, baseTime.Add(5*time.Second))
	late := snapshotOf(st, baseTime.Add(40*time.Minute))
	if early.HeatingTimeLeftS != 180 || late.HeatingTimeLeftS != 180 {
		t.Fatalf("countdown moved during downtime: %d then %d, want 180", early.HeatingTimeLeftS, late.HeatingTimeLeftS)
	}
	if early.HeatingDisplay != "03:00" || late.HeatingDisplay != "03:00" {
		t.Fatalf("heating display moved during downtime: %q then %q", early.HeatingDisplay, late.HeatingDisplay)
	}

	snap := snapshotOf(st, baseTime.Add(3930*time.Second)) // 1h05m30s
	if snap.Indicator != IndicatorDowntime {
		t.Fatalf("indicator = %q, want downtime", snap.Indicator)
	}
	if snap.DowntimeDisplay != "01:05:30" {
		t.Fatalf("downtime display = %q, want 01:05:30", snap.DowntimeDisplay)
	}
	if !snap.AlarmActive {
		t.Fatalf("alarm not reported active")
	}

	silenceAlarm(&st)
	snap = snapshotOf(st, baseTime.Add(2*time.Hour))
	if snap.AlarmActive {
		t.Fatalf("silenced alarm reported active")
	}
}

func TestIndicator(t *testing.T) {
	tests := []struct {
		name string
		st   furnace_tempo.FurnaceState
		want string
	}{
		{"idle", furnace_tempo.FurnaceState{Status: furnace_tempo.StatusIdle}, IndicatorInactive},
		{"heating with sheets", furnace_tempo.FurnaceState{Status: furnace_tempo.StatusHeating, RemainingSheets: 1}, IndicatorActive},
		{"heating drained", furnace_tempo.FurnaceState{Status: furnace_tempo.StatusHeating, RemainingSheets: 0}, IndicatorInactive},
		{"downtime", furnace_tempo.FurnaceState{Status: furnace_tempo.StatusDowntime, RemainingSheets: 1}, IndicatorDowntime},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := indicatorOf(tc.st); got != tc.want {
				t.Fatalf("indicator = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEstimatedTempo_IncompleteConfig(t *testing.T) {
	st := furnace_tempo.FurnaceState{SheetThicknessMM: 10, HeatingCoefficient: 0.75}
	if got := estimatedTempo(st); got != "--:--" {
		t.Fatalf("tempo without capacity = %q, want --:--", got)
	}
	st.SheetsInFurnace = 50
	if got := estimatedTempo(st); got != "00:09" {
		t.Fatalf("tempo = %q, want 00:09", got)
	}
}

func TestMonitoring_GetSnapshot_UnknownFurnace(t *testing.T) {
	svc := &MonitoringService{stateRepo: newFakeStateRepo(), now: fixedClock(baseTime)}
	_, err := svc.GetSnapshot(context.Background(), "rp9")
	if !errors.Is(err, ErrUnknownFurnace) {
		t.Fatalf("err = %v, want ErrUnknownFurnace", err)
	}
}

func TestMonitoring_GetFleet_SharedReadInstant(t *testing.T) {
	a := furnace_tempo.FurnaceState{ID: "rp2", Status: furnace_tempo.StatusHeating, RemainingSheets: 1}
	armHeating(&a, 100, baseTime)
	b := furnace_tempo.FurnaceState{ID: "rp3", Status: furnace_tempo.StatusIdle}
	svc := &MonitoringService{
		stateRepo: newFakeStateRepo(a, b),
		now:       fixedClock(baseTime.Add(25 * time.Second)),
	}

	snaps, err := svc.GetFleet(context.Background())
	if err != nil {
		t.Fatalf("GetFleet: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("fleet size = %d, want 2", len(snaps))
	}
	if snaps[0].ID != "rp2" || snaps[0].HeatingTimeLeftS != 75 {
		t.Fatalf("rp2 snapshot: %+v", snaps[0])
	}
	if snaps[1].ID != "rp3" || snaps[1].Indicator != IndicatorInactive {
		t.Fatalf("rp3 snapshot: %+v", snaps[1])
	}
}

func TestDisplayFormatting(t *testing.T) {
	if got := formatMMSS(605); got != "10:05" {
		t.Fatalf("formatMMSS(605) = %q", got)
	}
	if got := formatHHMMSS(3661); got != "01:01:01" {
		t.Fatalf("formatHHMMSS(3661) = %q", got)
	}
	if got := formatMMSS(0); got != "00:00" {
		t.Fatalf("formatMMSS(0) = %q", got)
	}
}
