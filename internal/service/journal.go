package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"furnace_tempo"
	"furnace_tempo/internal/repository"

	"github.com/google/uuid"
)

// dedupeWindow suppresses double-fired entries from redundant event sources:
// an entry identical to the previous one (type + card) within this window is
// dropped. Defensive, not a business rule.
const dedupeWindow = 1500 * time.Millisecond

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	ErrBadAdminPassword = errors.New("invalid administrator password")
	errEmptyAdminSecret = errors.New("journal clearing is disabled: no administrator password configured")
)

type JournalService struct {
	journalRepo repository.JournalRepo
	stateRepo   repository.StateRepo
	adminSecret string
	now         func() time.Time
}

func NewJournalService(journalRepo repository.JournalRepo, stateRepo repository.StateRepo, adminSecret string) *JournalService {
	return &JournalService{
		journalRepo: journalRepo,
		stateRepo:   stateRepo,
		adminSecret: adminSecret,
		now:         time.Now,
	}
}

// Record appends one entry, suppressing duplicates within the dedupe window.
func (s *JournalService) Record(ctx context.Context, furnaceID, entryType, cardNumber string, at time.Time) error {
	last, err := s.journalRepo.Last(ctx, furnaceID)
	if err == nil && last.EntryID != "" &&
		last.Type == entryType &&
		last.CardNumber == cardNumber &&
		absDuration(at.Sub(last.OccurredAt)) < dedupeWindow {
		return nil
	}

	return s.journalRepo.Append(ctx, furnace_tempo.JournalEntry{
		EntryID:    uuid.NewString(),
		FurnaceID:  furnaceID,
		OccurredAt: at.UTC(),
		Type:       entryType,
		CardNumber: cardNumber,
	})
}

// List returns journal entries for one furnace, normalized and validated the
// same way regardless of the caller.
func (s *JournalService) List(ctx context.Context, furnaceID string, f LogFilter) ([]furnace_tempo.JournalEntry, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	entryType := strings.TrimSpace(strings.ToUpper(f.Type))
	return s.journalRepo.List(ctx, furnaceID, from, to, entryType)
}

// Stats derives the report totals from the journal: dispensed sheets and
// accumulated downtime minutes, including a still-running downtime.
func (s *JournalService) Stats(ctx context.Context, furnaceID string) (furnace_tempo.FurnaceStats, error) {
	entries, err := s.journalRepo.List(ctx, furnaceID, time.Time{}, time.Time{}, "")
	if err != nil {
		return furnace_tempo.FurnaceStats{}, err
	}

	stats := furnace_tempo.FurnaceStats{FurnaceID: furnaceID}
	var downtimeSince time.Time
	for _, e := range entries {
		switch e.Type {
		case furnace_tempo.EntrySheetDispensed:
			stats.TotalSheets++
		case furnace_tempo.EntryDowntimeStarted:
			downtimeSince = e.OccurredAt
		case furnace_tempo.EntryDowntimeEnded:
			if !downtimeSince.IsZero() {
				stats.DowntimeMinutes += int(e.OccurredAt.Sub(downtimeSince).Minutes())
				downtimeSince = time.Time{}
			}
		}
	}

	// A downtime still in progress counts from its stored origin.
	st, err := s.stateRepo.Load(ctx, furnaceID)
	if err == nil && st.InDowntime() && st.DowntimeStartMs != 0 {
		elapsedMs := furnace_tempo.UnixMs(s.now()) - st.DowntimeStartMs
		if elapsedMs > 0 {
			stats.DowntimeMinutes += int(elapsedMs / (1000 * 60))
		}
	}
	return stats, nil
}

// Clear wipes one furnace's journal after checking the administrator secret.
func (s *JournalService) Clear(ctx context.Context, furnaceID, adminPassword string) error {
	if s.adminSecret == "" {
		return errEmptyAdminSecret
	}
	if adminPassword != s.adminSecret {
		return ErrBadAdminPassword
	}
	return s.journalRepo.Clear(ctx, furnaceID)
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
