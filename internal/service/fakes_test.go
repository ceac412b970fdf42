package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"furnace_tempo"
)

type fakeStateRepo struct {
	states     map[string]furnace_tempo.FurnaceState
	loadErr    error
	loadAllErr error
	saveErr    error
	savedCalls []furnace_tempo.FurnaceState
}

func newFakeStateRepo(states ...furnace_tempo.FurnaceState) *fakeStateRepo {
	m := make(map[string]furnace_tempo.FurnaceState, len(states))
	for _, s := range states {
		m[s.ID] = s
	}
	return &fakeStateRepo{states: m}
}

func (f *fakeStateRepo) Save(ctx context.Context, s furnace_tempo.FurnaceState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.states[s.ID] = s
	f.savedCalls = append(f.savedCalls, s)
	return nil
}

func (f *fakeStateRepo) Load(ctx context.Context, id string) (furnace_tempo.FurnaceState, error) {
	if f.loadErr != nil {
		return furnace_tempo.FurnaceState{}, f.loadErr
	}
	return f.states[id], nil // zero state for unknown ids, like the SQLite repo
}

func (f *fakeStateRepo) LoadAll(ctx context.Context) ([]furnace_tempo.FurnaceState, error) {
	if f.loadAllErr != nil {
		return nil, f.loadAllErr
	}
	out := make([]furnace_tempo.FurnaceState, 0, len(f.states))
	for _, s := range f.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeJournalRepo struct {
	entries    []furnace_tempo.JournalEntry
	appendErr  error
	listErr    error
	clearCalls []string
}

func (f *fakeJournalRepo) Append(ctx context.Context, e furnace_tempo.JournalEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeJournalRepo) Last(ctx context.Context, furnaceID string) (furnace_tempo.JournalEntry, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].FurnaceID == furnaceID {
			return f.entries[i], nil
		}
	}
	return furnace_tempo.JournalEntry{}, nil
}

func (f *fakeJournalRepo) List(ctx context.Context, furnaceID string, from, to time.Time, typ string) ([]furnace_tempo.JournalEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []furnace_tempo.JournalEntry
	for _, e := range f.entries {
		if e.FurnaceID != furnaceID {
			continue
		}
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeJournalRepo) Clear(ctx context.Context, furnaceID string) error {
	f.clearCalls = append(f.clearCalls, furnaceID)
	var kept []furnace_tempo.JournalEntry
	for _, e := range f.entries {
		if e.FurnaceID != furnaceID {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return nil
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func entriesOfType(entries []furnace_tempo.JournalEntry, typ string) []furnace_tempo.JournalEntry {
	var out []furnace_tempo.JournalEntry
	for _, e := range entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func lastSavedState(t *testing.T, f *fakeStateRepo) furnace_tempo.FurnaceState {
	t.Helper()
	if len(f.savedCalls) == 0 {
		t.Fatalf("expected at least one Save call")
	}
	return f.savedCalls[len(f.savedCalls)-1]
}

// newTestControl wires a ControlService over fakes with a frozen clock.
func newTestControl(srepo *fakeStateRepo, jrepo *fakeJournalRepo, at time.Time) *ControlService {
	journal := &JournalService{
		journalRepo: jrepo,
		stateRepo:   srepo,
		adminSecret: "s3cret",
		now:         fixedClock(at),
	}
	fleet := &FleetService{stateRepo: srepo, now: fixedClock(at)}
	return &ControlService{
		stateRepo: srepo,
		journal:   journal,
		fleet:     fleet,
		now:       fixedClock(at),
	}
}
