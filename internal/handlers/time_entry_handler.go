package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chrona/internal/models"
	"chrona/internal/services"
)

type TimeEntryHandler struct {
	service services.TimeEntryService
}

func NewTimeEntryHandler(service services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{service: service}
}

// POST /time-entries/
func (h *TimeEntryHandler) Create(c *gin.Context) {
	var req struct {
		TaskID    string   `json:"task_id" binding:"required"`
		StartTime string   `json:"start_time" binding:"required"` // ISO-8601, offset ignored
		EndTime   *string  `json:"end_time"`
		Duration  *float64 `json:"duration"` // minutes
		Notes     *string  `json:"notes"`
	}
	actor := actorOf(c)
	log.Printf("[entry][create] call by user=%q", actor.UserID)

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[entry][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := parseTimestamp("start_time", req.StartTime)
	if err != nil {
		respondError(c, "[entry][create]", err)
		return
	}
	end, err := parseOptionalTimestamp("end_time", req.EndTime)
	if err != nil {
		respondError(c, "[entry][create]", err)
		return
	}

	entry, err := h.service.Create(c.Request.Context(), actor, models.TimeEntryCreate{
		TaskID:    req.TaskID,
		StartTime: start,
		EndTime:   end,
		Duration:  req.Duration,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, "[entry][create]", err)
		return
	}
	log.Printf("[entry][create][ok] id=%s task_id=%s open=%t", entry.ID, entry.TaskID, entry.IsOpen())
	c.JSON(http.StatusOK, entry)
}

// GET /time-entries/?skip=&limit=
func (h *TimeEntryHandler) GetAll(c *gin.Context) {
	skip, limit, err := pageParams(c)
	if err != nil {
		respondError(c, "[entry][list]", err)
		return
	}
	entries, err := h.service.GetAll(c.Request.Context(), actorOf(c), skip, limit)
	if err != nil {
		respondError(c, "[entry][list]", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /time-entries/:id
func (h *TimeEntryHandler) GetByID(c *gin.Context) {
	entry, err := h.service.GetByID(c.Request.Context(), actorOf(c), c.Param("id"))
	if err != nil {
		respondError(c, "[entry][getByID]", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// PUT /time-entries/:id
func (h *TimeEntryHandler) Update(c *gin.Context) {
	var req struct {
		EndTime  *string  `json:"end_time"`
		Duration *float64 `json:"duration"`
		Notes    *string  `json:"notes"`
	}
	actor := actorOf(c)
	id := c.Param("id")
	log.Printf("[entry][update] call by user=%q id=%s", actor.UserID, id)

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[entry][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := parseOptionalTimestamp("end_time", req.EndTime)
	if err != nil {
		respondError(c, "[entry][update]", err)
		return
	}

	entry, err := h.service.Update(c.Request.Context(), actor, id, models.TimeEntryUpdate{
		EndTime:  end,
		Duration: req.Duration,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(c, "[entry][update]", err)
		return
	}
	log.Printf("[entry][update][ok] id=%s open=%t", entry.ID, entry.IsOpen())
	c.JSON(http.StatusOK, entry)
}

// DELETE /time-entries/:id
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	actor := actorOf(c)
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, "[entry][delete]", err)
		return
	}
	log.Printf("[entry][delete][ok] id=%s by user=%q", id, actor.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "Time entry deleted successfully"})
}
