package handlers

import (
	"errors"
	"net/http"

	"furnace_tempo/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusStarted  = "started"
	statusReset    = "reset"
	statusUpdated  = "updated"
	statusDowntime = "downtime_started"
	statusResumed  = "downtime_ended"
	statusSilenced = "alarm_silenced"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// controlError maps service errors to HTTP responses.
func (h *Handler) controlError(c *gin.Context, logKey string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownFurnace):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConfigIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrProcessActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "internal error", logKey, err, "furnace", c.Param("id"))
	}
}

// Respond with a status and include the furnace snapshot if available (best-effort).
func (h *Handler) respondWithStatusAndSnapshot(c *gin.Context, furnaceID, status string) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status, "furnace_id": furnaceID}
	if snap, err := h.services.Monitoring.GetSnapshot(ctx, furnaceID); err == nil {
		resp["state"] = snap
	}
	c.JSON(http.StatusOK, resp)
}

// ConfigRequest carries partial configuration edits; absent fields are left
// unchanged.
type ConfigRequest struct {
	// Sheet length in millimetres; an edit recomputes furnace capacity
	SheetLengthMM *int `json:"sheet_length_mm,omitempty" example:"1000"`
	// Sheet thickness in millimetres
	SheetThicknessMM *int `json:"sheet_thickness_mm,omitempty" example:"5"`
	// Heating-time coefficient (minutes of heat per mm of thickness)
	HeatingCoefficient *float64 `json:"heating_coefficient,omitempty" example:"2"`
	// Manual furnace-capacity override
	SheetsInFurnace *int `json:"sheets_in_furnace,omitempty" example:"65"`
	// Batch (card) label
	CardNumber *string `json:"card_number,omitempty" example:"K-1042"`
	// Sheets grouped under the card; an edit resets the remaining counter
	SheetsPerBatch *int `json:"sheets_per_batch,omitempty" example:"3"`
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Fleet snapshots
// @Tags         furnaces
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, furnaces"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/furnaces [get]
// @Security     BearerAuth
func (h *Handler) getFleet(c *gin.Context) {
	snaps, err := h.services.Monitoring.GetFleet(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load fleet", "fleet_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(snaps), "furnaces": snaps})
}

// @Summary      Furnace snapshot
// @Tags         furnaces
// @Produce      json
// @Param        id  path  string  true  "Furnace id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/furnaces/{id} [get]
// @Security     BearerAuth
func (h *Handler) getSnapshot(c *gin.Context) {
	snap, err := h.services.Monitoring.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.controlError(c, "furnace_get_snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Edit configuration
// @Description  Only valid while the furnace is idle; a sheet-length edit recomputes capacity
// @Tags         furnaces
// @Accept       json
// @Produce      json
// @Param        id    path  string         true  "Furnace id"
// @Param        body  body  ConfigRequest  true  "Field edits"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/config [patch]
// @Security     BearerAuth
func (h *Handler) updateConfig(c *gin.Context) {
	var req ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	id := c.Param("id")
	params := service.ConfigParams{
		SheetLengthMM:      req.SheetLengthMM,
		SheetThicknessMM:   req.SheetThicknessMM,
		HeatingCoefficient: req.HeatingCoefficient,
		SheetsInFurnace:    req.SheetsInFurnace,
		CardNumber:         req.CardNumber,
		SheetsPerBatch:     req.SheetsPerBatch,
	}
	if err := h.services.Control.UpdateConfig(c.Request.Context(), id, params); err != nil {
		h.controlError(c, "furnace_update_config_failed", err)
		return
	}
	h.respondWithStatusAndSnapshot(c, id, statusUpdated)
}

// @Summary      Start process
// @Description  Requires a complete configuration; locks inputs and arms the first heating cycle
// @Tags         furnaces
// @Produce      json
// @Param        id  path  string  true  "Furnace id"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/start [post]
// @Security     BearerAuth
func (h *Handler) startProcess(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Control.Start(c.Request.Context(), id); err != nil {
		h.controlError(c, "furnace_start_failed", err)
		return
	}
	h.respondWithStatusAndSnapshot(c, id, statusStarted)
}

// @Summary      Reset furnace
// @Description  Clears configuration, counters and timers; the journal is kept. Requires confirm=true.
// @Tags         furnaces
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Furnace id"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/reset [post]
// @Security     BearerAuth
func (h *Handler) resetFurnace(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reset requires confirmation"})
		return
	}
	id := c.Param("id")
	if err := h.services.Control.Reset(c.Request.Context(), id); err != nil {
		h.controlError(c, "furnace_reset_failed", err)
		return
	}
	h.respondWithStatusAndSnapshot(c, id, statusReset)
}

// @Summary      Begin downtime
// @Tags         furnaces
// @Produce      json
// @Param        id  path  string  true  "Furnace id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/downtime/start [post]
// @Security     BearerAuth
func (h *Handler) beginDowntime(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Control.BeginDowntime(c.Request.Context(), id); err != nil {
		h.controlError(c, "furnace_begin_downtime_failed", err)
		return
	}
	h.respondWithStatusAndSnapshot(c, id, statusDowntime)
}

// @Summary      End downtime
// @Description  No-op when the furnace is not in downtime; triggers the fleet alarm sweep
// @Tags         furnaces
// @Produce      json
// @Param        id  path  string  true  "Furnace id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/downtime/end [post]
// @Security     BearerAuth
func (h *Handler) endDowntime(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Control.EndDowntime(c.Request.Context(), id); err != nil {
		h.controlError(c, "furnace_end_downtime_failed", err)
		return
	}
	h.respondWithStatusAndSnapshot(c, id, statusResumed)
}

// @Summary      Silence alarm
// @Description  Suppresses the alarm for the remainder of the current downtime period
// @Tags         furnaces
// @Produce      json
// @Param        id  path  string  true  "Furnace id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/furnaces/{id}/alarm/silence [post]
// @Security     BearerAuth
func (h *Handler) silenceAlarm(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Control.SilenceAlarm(c.Request.Context(), id); err != nil {
		h.controlError(c, "furnace_silence_alarm_failed", err)
		return
	}
	h.respondWithStatusAndSnapshot(c, id, statusSilenced)
}
