package service

import (
	"context"
	"time"

	"furnace_tempo"
	"furnace_tempo/internal/logger"
	"furnace_tempo/internal/repository"
)

// TickerService is the single periodic driver behind every countdown. It only
// applies the pure transition functions with the tick's wall clock; all
// elapsed time is derived from stored origins, so tick precision is best
// effort and restarts are harmless.
type TickerService struct {
	stateRepo repository.StateRepo
	journal   *JournalService
	log       *logger.Logger
}

func NewTickerService(stateRepo repository.StateRepo, journal *JournalService, log *logger.Logger) *TickerService {
	return &TickerService{stateRepo: stateRepo, journal: journal, log: log}
}

// Run ticks at the given interval until ctx is canceled.
func (s *TickerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.step(ctx, now)
		}
	}
}

// step evaluates one tick for the whole fleet. Per furnace the order is
// fixed: countdown evaluation, then snapshot save, then journal append, so an
// observer never sees a dispensed-sheet entry without the decrement already
// persisted.
// Failures are logged and isolated to their furnace.
func (s *TickerService) step(ctx context.Context, now time.Time) {
	states, err := s.stateRepo.LoadAll(ctx)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("tick: load fleet failed", "err", err)
		}
		return
	}

	for i := range states {
		st := &states[i]

		dispensed, degenerate := advanceHeating(st, now)
		alarmed := escalateAlarm(st, now)
		if !dispensed && !degenerate && !alarmed {
			continue
		}

		st.UpdatedAt = now.UTC()
		if err := s.stateRepo.Save(ctx, *st); err != nil {
			if s.log != nil {
				s.log.Errorw("tick: save failed", "furnace", st.ID, "err", err)
			}
			continue
		}

		if dispensed {
			if err := s.journal.Record(ctx, st.ID, furnace_tempo.EntrySheetDispensed, st.CardNumber, now); err != nil && s.log != nil {
				s.log.Errorw("tick: journal append failed", "furnace", st.ID, "err", err)
			}
		}
		if degenerate && s.log != nil {
			s.log.Warnw("tick: recomputed cycle duration degenerate, cycle halted",
				"furnace", st.ID,
				"thickness_mm", st.SheetThicknessMM,
				"coefficient", st.HeatingCoefficient,
				"sheets_in_furnace", st.SheetsInFurnace)
		}
		if alarmed && s.log != nil {
			s.log.Warnw("tick: downtime alarm triggered",
				"furnace", st.ID, "elapsed_s", st.DowntimeElapsed(now))
		}
	}
}
