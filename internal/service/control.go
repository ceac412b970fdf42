package service

import (
	"context"
	"errors"
	"time"

	"furnace_tempo"
	"furnace_tempo/internal/logger"
	"furnace_tempo/internal/repository"
)

var (
	ErrUnknownFurnace   = errors.New("unknown furnace id")
	ErrConfigIncomplete = errors.New("configuration incomplete: all parameters must be positive and card number non-empty")
	ErrProcessActive    = errors.New("configuration is locked while a process is active")
)

// ControlService owns the per-furnace state machine. Every mutation follows
// load → guard → transition → save → journal; guards are checked before any
// mutation, so no transition partially applies. Invalid downtime transitions
// are no-ops rather than errors.
type ControlService struct {
	stateRepo repository.StateRepo
	journal   *JournalService
	fleet     *FleetService
	log       *logger.Logger
	now       func() time.Time
}

func NewControlService(stateRepo repository.StateRepo, journal *JournalService, fleet *FleetService, log *logger.Logger) *ControlService {
	return &ControlService{
		stateRepo: stateRepo,
		journal:   journal,
		fleet:     fleet,
		log:       log,
		now:       time.Now,
	}
}

// EnsureFleet creates baseline IDLE rows for configured furnaces that have no
// snapshot yet. Existing snapshots are left untouched apart from the label.
func (s *ControlService) EnsureFleet(ctx context.Context, seeds []FurnaceSeed) error {
	for _, seed := range seeds {
		st, err := s.stateRepo.Load(ctx, seed.ID)
		if err != nil {
			return err
		}
		if st.ID == "" {
			st = furnace_tempo.FurnaceState{
				ID:     seed.ID,
				Label:  seed.Label,
				Status: furnace_tempo.StatusIdle,
			}
		} else if st.Label == seed.Label {
			continue
		} else {
			st.Label = seed.Label
		}
		st.UpdatedAt = s.now().UTC()
		if err := s.stateRepo.Save(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// UpdateConfig applies field edits while the furnace is idle.
func (s *ControlService) UpdateConfig(ctx context.Context, furnaceID string, p ConfigParams) error {
	st, err := s.load(ctx, furnaceID)
	if err != nil {
		return err
	}
	if st.ProcessStarted() {
		return ErrProcessActive
	}

	if p.SheetLengthMM != nil {
		st.SheetLengthMM = clampNonNegative(*p.SheetLengthMM)
		// A length edit always retakes capacity from the automatic
		// recompute; a prior manual override does not survive it.
		if st.SheetLengthMM > 0 {
			st.SheetsInFurnace = furnace_tempo.FurnaceLengthMM / st.SheetLengthMM
		} else {
			st.SheetsInFurnace = 0
		}
		st.SheetsManual = false
	}
	if p.SheetThicknessMM != nil {
		st.SheetThicknessMM = clampNonNegative(*p.SheetThicknessMM)
	}
	if p.HeatingCoefficient != nil {
		c := *p.HeatingCoefficient
		if c < 0 {
			c = 0
		}
		st.HeatingCoefficient = c
	}
	if p.SheetsInFurnace != nil {
		st.SheetsInFurnace = clampNonNegative(*p.SheetsInFurnace)
		st.SheetsManual = true
	}
	if p.CardNumber != nil {
		st.CardNumber = *p.CardNumber
	}
	if p.SheetsPerBatch != nil {
		st.SheetsPerBatch = clampNonNegative(*p.SheetsPerBatch)
		st.RemainingSheets = st.SheetsPerBatch
	}

	return s.save(ctx, st)
}

// Start performs the IDLE→HEATING transition: validates the configuration,
// fills the sheet counter from the batch size, computes and arms the first
// cycle and journals the start. Starting an already started furnace is a
// no-op.
func (s *ControlService) Start(ctx context.Context, furnaceID string) error {
	st, err := s.load(ctx, furnaceID)
	if err != nil {
		return err
	}
	if st.ProcessStarted() {
		return nil
	}
	if !st.ConfigComplete() {
		return ErrConfigIncomplete
	}

	duration := ComputeCycleDuration(st.SheetThicknessMM, st.HeatingCoefficient, st.SheetsInFurnace)
	if duration <= 0 {
		return ErrConfigIncomplete
	}

	now := s.now()
	st.Status = furnace_tempo.StatusHeating
	st.RemainingSheets = st.SheetsPerBatch
	armHeating(&st, duration, now)

	if err := s.save(ctx, st); err != nil {
		return err
	}
	return s.journal.Record(ctx, furnaceID, furnace_tempo.EntryProcessStarted, st.CardNumber, now)
}

// Reset returns the furnace to IDLE: configuration, counters, timer origins
// and alarm state are cleared. The journal is not touched.
func (s *ControlService) Reset(ctx context.Context, furnaceID string) error {
	st, err := s.load(ctx, furnaceID)
	if err != nil {
		return err
	}

	st = furnace_tempo.FurnaceState{
		ID:     st.ID,
		Label:  st.Label,
		Status: furnace_tempo.StatusIdle,
	}
	return s.save(ctx, st)
}

// BeginDowntime performs HEATING→DOWNTIME. Calling it while not heating is a
// no-op.
func (s *ControlService) BeginDowntime(ctx context.Context, furnaceID string) error {
	st, err := s.load(ctx, furnaceID)
	if err != nil {
		return err
	}
	if st.Status != furnace_tempo.StatusHeating {
		return nil
	}

	now := s.now()
	beginDowntime(&st, now)

	if err := s.save(ctx, st); err != nil {
		return err
	}
	return s.journal.Record(ctx, furnaceID, furnace_tempo.EntryDowntimeStarted, "", now)
}

// EndDowntime performs DOWNTIME→HEATING and triggers the fleet-wide alarm
// sweep. Calling it while not in downtime is a no-op, so a double call has
// the same effect as a single one.
func (s *ControlService) EndDowntime(ctx context.Context, furnaceID string) error {
	st, err := s.load(ctx, furnaceID)
	if err != nil {
		return err
	}
	if !st.InDowntime() {
		return nil
	}

	now := s.now()
	endDowntime(&st, now)

	if err := s.save(ctx, st); err != nil {
		return err
	}
	if err := s.journal.Record(ctx, furnaceID, furnace_tempo.EntryDowntimeEnded, "", now); err != nil {
		return err
	}
	return s.fleet.Sweep(ctx)
}

// SilenceAlarm acknowledges the alarm for the current downtime period.
// A no-op outside downtime.
func (s *ControlService) SilenceAlarm(ctx context.Context, furnaceID string) error {
	st, err := s.load(ctx, furnaceID)
	if err != nil {
		return err
	}
	if !st.InDowntime() {
		return nil
	}

	silenceAlarm(&st)
	return s.save(ctx, st)
}

func (s *ControlService) load(ctx context.Context, furnaceID string) (furnace_tempo.FurnaceState, error) {
	st, err := s.stateRepo.Load(ctx, furnaceID)
	if err != nil {
		return furnace_tempo.FurnaceState{}, err
	}
	if st.ID == "" {
		return furnace_tempo.FurnaceState{}, ErrUnknownFurnace
	}
	return st, nil
}

func (s *ControlService) save(ctx context.Context, st furnace_tempo.FurnaceState) error {
	st.UpdatedAt = s.now().UTC()
	return s.stateRepo.Save(ctx, st)
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
