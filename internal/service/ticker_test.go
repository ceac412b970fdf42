package service

import (
	"context"
	"testing"
	"time"

	"furnace_tempo"
)

func newTestTicker(srepo *fakeStateRepo, jrepo *fakeJournalRepo, at time.Time) *TickerService {
	return &TickerService{
		stateRepo: srepo,
		journal:   newTestJournal(jrepo, srepo, at),
	}
}

func TestTickerStep_DispensesSavesThenJournals(t *testing.T) {
	st := furnace_tempo.FurnaceState{
		ID:                 "rp2",
		Status:             furnace_tempo.StatusHeating,
		SheetThicknessMM:   10,
		HeatingCoefficient: 0.75,
		SheetsInFurnace:    50,
		RemainingSheets:    3,
		CardNumber:         "K-1042",
	}
	armHeating(&st, 9, baseTime)
	srepo := newFakeStateRepo(st)
	jrepo := &fakeJournalRepo{}

	now := baseTime.Add(9 * time.Second)
	newTestTicker(srepo, jrepo, now).step(context.Background(), now)

	got := srepo.states["rp2"]
	if got.RemainingSheets != 2 {
		t.Fatalf("remaining = %d, want 2", got.RemainingSheets)
	}
	dispensed := entriesOfType(jrepo.entries, furnace_tempo.EntrySheetDispensed)
	if len(dispensed) != 1 {
		t.Fatalf("SHEET_DISPENSED entries = %d, want 1", len(dispensed))
	}
	if dispensed[0].CardNumber != "K-1042" {
		t.Fatalf("journal card = %q, want K-1042", dispensed[0].CardNumber)
	}
}

func TestTickerStep_SkipsQuietFurnaces(t *testing.T) {
	running := furnace_tempo.FurnaceState{ID: "rp2", Status: furnace_tempo.StatusHeating, RemainingSheets: 2}
	armHeating(&running, 100, baseTime)
	idle := furnace_tempo.FurnaceState{ID: "rp3", Status: furnace_tempo.StatusIdle}
	srepo := newFakeStateRepo(running, idle)
	jrepo := &fakeJournalRepo{}

	now := baseTime.Add(time.Second) // countdown far from expiry
	newTestTicker(srepo, jrepo, now).step(context.Background(), now)

	if len(srepo.savedCalls) != 0 || len(jrepo.entries) != 0 {
		t.Fatalf("quiet tick wrote: saves=%d entries=%d", len(srepo.savedCalls), len(jrepo.entries))
	}
}

func TestTickerStep_EscalatesDowntimeAlarm(t *testing.T) {
	st := furnace_tempo.FurnaceState{ID: "rp2", Status: furnace_tempo.StatusHeating}
	beginDowntime(&st, baseTime)
	srepo := newFakeStateRepo(st)
	jrepo := &fakeJournalRepo{}

	now := baseTime.Add(61 * time.Second)
	newTestTicker(srepo, jrepo, now).step(context.Background(), now)

	got := srepo.states["rp2"]
	if got.AlarmStartMs != furnace_tempo.UnixMs(now) {
		t.Fatalf("alarm not escalated by tick: %+v", got)
	}
	// alarm escalation persists state but is not a journal event
	if len(jrepo.entries) != 0 {
		t.Fatalf("alarm escalation journaled: %+v", jrepo.entries)
	}
}

func TestTickerStep_SaveFailureSkipsJournal(t *testing.T) {
	st := furnace_tempo.FurnaceState{
		ID:                 "rp2",
		Status:             furnace_tempo.StatusHeating,
		SheetThicknessMM:   10,
		HeatingCoefficient: 0.75,
		SheetsInFurnace:    50,
		RemainingSheets:    3,
	}
	armHeating(&st, 9, baseTime)
	srepo := newFakeStateRepo(st)
	srepo.saveErr = context.DeadlineExceeded
	jrepo := &fakeJournalRepo{}

	now := baseTime.Add(9 * time.Second)
	newTestTicker(srepo, jrepo, now).step(context.Background(), now)

	// the journal must not record a dispense whose decrement never persisted
	if len(jrepo.entries) != 0 {
		t.Fatalf("journal entry without persisted state: %+v", jrepo.entries)
	}
}

func TestTickerRun_StopsOnContextCancel(t *testing.T) {
	srepo := newFakeStateRepo()
	ticker := newTestTicker(srepo, &fakeJournalRepo{}, baseTime)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ticker.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
