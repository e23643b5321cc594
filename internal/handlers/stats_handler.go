package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chrona/internal/apperrors"
	"chrona/internal/pdf"
	"chrona/internal/services"
)

type StatsHandler struct {
	service services.StatsService
	users   services.UserService
	reports *pdf.ReportGenerator
}

func NewStatsHandler(service services.StatsService, users services.UserService, reports *pdf.ReportGenerator) *StatsHandler {
	return &StatsHandler{service: service, users: users, reports: reports}
}

// GET /stats/daily?date=YYYY-MM-DD
func (h *StatsHandler) Daily(c *gin.Context) {
	day, err := dateQuery(c)
	if err != nil {
		respondError(c, "[stats][daily]", err)
		return
	}
	stats, err := h.service.Daily(c.Request.Context(), actorOf(c), day)
	if err != nil {
		respondError(c, "[stats][daily]", err)
		return
	}
	log.Printf("[stats][daily][ok] date=%s total=%.1f tasks=%d", stats.Date, stats.TotalDuration, len(stats.Tasks))
	c.JSON(http.StatusOK, stats)
}

// GET /stats/weekly?date=YYYY-MM-DD
func (h *StatsHandler) Weekly(c *gin.Context) {
	day, err := dateQuery(c)
	if err != nil {
		respondError(c, "[stats][weekly]", err)
		return
	}
	stats, err := h.service.Weekly(c.Request.Context(), actorOf(c), day)
	if err != nil {
		respondError(c, "[stats][weekly]", err)
		return
	}
	log.Printf("[stats][weekly][ok] week=%s..%s total=%.1f", stats.WeekStart, stats.WeekEnd, stats.TotalDuration)
	c.JSON(http.StatusOK, stats)
}

// GET /stats/weekly/pdf?date=YYYY-MM-DD
func (h *StatsHandler) WeeklyPDF(c *gin.Context) {
	actor := actorOf(c)
	day, err := dateQuery(c)
	if err != nil {
		respondError(c, "[stats][weeklyPdf]", err)
		return
	}
	stats, err := h.service.Weekly(c.Request.Context(), actor, day)
	if err != nil {
		respondError(c, "[stats][weeklyPdf]", err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.WriteWeekly(&buf, stats, h.ownerName(c.Request.Context(), actor.UserID)); err != nil {
		log.Printf("[stats][weeklyPdf][err] render: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="week-%s.pdf"`, stats.WeekStart))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ownerName labels a report with the user's name, or their id when the name is unknown.
func (h *StatsHandler) ownerName(ctx context.Context, userID string) string {
	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if !apperrors.Is(err, apperrors.KindNotFound) {
			log.Printf("[stats][weeklyPdf][warn] user lookup id=%s: %v", userID, err)
		}
		return userID
	}
	if user.Name == "" {
		return userID
	}
	return user.Name
}
