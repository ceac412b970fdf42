package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"furnace_tempo/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// clearJournalRequest carries the administrator password gating the wipe.
type clearJournalRequest struct {
	Password string `json:"password" binding:"required"`
}

// @Summary      List journal
// @Description  Filter entries by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         journal
// @Produce      json
// @Param        id    path    string  true   "Furnace id"
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range; date-only treated as end of day"  example(2025-08-31)
// @Param        type  query   string  false  "Entry type"  Enums(PROCESS_STARTED,SHEET_DISPENSED,DOWNTIME_STARTED,DOWNTIME_ENDED)
// @Success      200   {object}  map[string]interface{}  "count, entries"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/journal [get]
// @Security     BearerAuth
func (h *Handler) getJournal(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		// Normalize entry type: trim spaces and uppercase to match stored values.
		entryType = strings.ToUpper(strings.TrimSpace(c.Query("type")))
		err       error
	)
	// Parse 'from' (optional)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	// Parse 'to' (optional). If only a date is provided, make it end-of-day inclusive.
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	id := c.Param("id")
	entries, err := h.services.Journal.List(ctx, id, service.LogFilter{
		From: from,
		To:   to,
		Type: entryType,
	})
	if err != nil {
		if h.log != nil {
			h.log.Errorw("journal_list_failed", "err", err, "furnace", id, "from", from, "to", to, "type", entryType)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load journal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}

// @Summary      Clear journal
// @Description  Administrative wipe gated by a shared secret
// @Tags         journal
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Furnace id"
// @Param        body  body  clearJournalRequest  true  "Administrator password"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/journal [delete]
// @Security     BearerAuth
func (h *Handler) clearJournal(c *gin.Context) {
	var req clearJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.services.Journal.Clear(c.Request.Context(), id, req.Password); err != nil {
		if errors.Is(err, service.ErrBadAdminPassword) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to clear journal", "journal_clear_failed", err, "furnace", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "furnace_id": id})
}

// @Summary      Furnace statistics
// @Description  Journal-derived totals: dispensed sheets and downtime minutes
// @Tags         journal
// @Produce      json
// @Param        id  path  string  true  "Furnace id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/stats [get]
// @Security     BearerAuth
func (h *Handler) getStats(c *gin.Context) {
	id := c.Param("id")
	stats, err := h.services.Journal.Stats(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load stats", "journal_stats_failed", err, "furnace", id)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
