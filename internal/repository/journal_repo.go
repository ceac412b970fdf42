package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"furnace_tempo"

	"github.com/google/uuid"
)

type JournalSQLite struct {
	db *sql.DB
}

func NewJournalSQLite(db *sql.DB) *JournalSQLite { return &JournalSQLite{db: db} }

const sqliteTimeLayout = "2006-01-02 15:04:05.999"

// Append inserts a new entry. If EntryID or OccurredAt are empty, they’re set.
func (r *JournalSQLite) Append(ctx context.Context, e furnace_tempo.JournalEntry) error {
	if e.EntryID == "" {
		e.EntryID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var cardPtr *string
	if e.CardNumber != "" {
		cardPtr = &e.CardNumber
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, furnace_id, occurred_at, type, card_number)
		VALUES (?, ?, ?, ?, ?)
	`,
		e.EntryID,
		e.FurnaceID,
		e.OccurredAt.Format(sqliteTimeLayout),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		cardPtr,
	)
	return err
}

// Last returns the most recent entry for a furnace, or a zero entry (empty
// EntryID) when the journal is empty. Used for duplicate suppression.
func (r *JournalSQLite) Last(ctx context.Context, furnaceID string) (furnace_tempo.JournalEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, furnace_id, occurred_at, type, card_number
		FROM journal_entries
		WHERE furnace_id = ?
		ORDER BY occurred_at DESC
		LIMIT 1
	`, furnaceID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return furnace_tempo.JournalEntry{}, nil
		}
		return furnace_tempo.JournalEntry{}, err
	}
	return e, nil
}

// List returns entries for a furnace filtered by [from, to] (inclusive)
// and/or type, ordered ASC.
func (r *JournalSQLite) List(ctx context.Context, furnaceID string, from, to time.Time, typ string) ([]furnace_tempo.JournalEntry, error) {
	conds := []string{"furnace_id = ?"}
	args := []any{furnaceID}

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, furnace_id, occurred_at, type, card_number FROM journal_entries`
	q += " WHERE " + strings.Join(conds, " AND ")
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]furnace_tempo.JournalEntry, 0, 64)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear wipes the journal of one furnace. Callers gate this behind the
// administrative password check.
func (r *JournalSQLite) Clear(ctx context.Context, furnaceID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE furnace_id = ?`, furnaceID)
	return err
}

func scanEntry(row rowScanner) (furnace_tempo.JournalEntry, error) {
	var e furnace_tempo.JournalEntry
	var card sql.NullString
	if err := row.Scan(&e.EntryID, &e.FurnaceID, &e.OccurredAt, &e.Type, &card); err != nil {
		return furnace_tempo.JournalEntry{}, err
	}
	e.OccurredAt = e.OccurredAt.UTC()
	if card.Valid {
		e.CardNumber = card.String
	}
	return e, nil
}
