package service

import (
	"context"
	"time"

	"furnace_tempo/internal/logger"
	"furnace_tempo/internal/repository"
)

// FleetService applies the cross-furnace alarm rule: alarms stay per-furnace,
// but the decision to clear or escalate is re-evaluated over the whole fleet
// whenever any furnace leaves downtime.
type FleetService struct {
	stateRepo repository.StateRepo
	log       *logger.Logger
	now       func() time.Time
}

func NewFleetService(stateRepo repository.StateRepo, log *logger.Logger) *FleetService {
	return &FleetService{stateRepo: stateRepo, log: log, now: time.Now}
}

// Sweep re-evaluates all furnaces. If none remain in downtime, alarm state is
// force-cleared everywhere. Otherwise every furnace still in downtime past
// the threshold that is neither alarming nor silenced gets its own alarm.
func (s *FleetService) Sweep(ctx context.Context) error {
	states, err := s.stateRepo.LoadAll(ctx)
	if err != nil {
		return err
	}

	anyDowntime := false
	for i := range states {
		if states[i].InDowntime() || states[i].DowntimeStartMs != 0 {
			anyDowntime = true
			break
		}
	}

	now := s.now()
	for i := range states {
		st := &states[i]

		changed := false
		if !anyDowntime {
			changed = clearAlarm(st)
		} else if escalateAlarm(st, now) {
			changed = true
			if s.log != nil {
				s.log.Warnw("downtime alarm triggered by fleet sweep",
					"furnace", st.ID, "elapsed_s", st.DowntimeElapsed(now))
			}
		}
		if !changed {
			continue
		}

		st.UpdatedAt = now.UTC()
		if err := s.stateRepo.Save(ctx, *st); err != nil {
			// One furnace's persistence failure must not block the rest.
			if s.log != nil {
				s.log.Errorw("fleet sweep save failed", "furnace", st.ID, "err", err)
			}
		}
	}
	return nil
}
