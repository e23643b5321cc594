package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chrona/internal/apperrors"
	"chrona/internal/authz"
	"chrona/internal/middleware"
	"chrona/internal/models"
)

func actorOf(c *gin.Context) authz.Actor {
	return middleware.ActorFrom(c)
}

func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// respondError logs err under tag and writes it with the status of its kind.
// Upstream failures are reported without their cause.
func respondError(c *gin.Context, tag string, err error) {
	status := statusFor(err)
	log.Printf("%s[err] status=%d %v", tag, status, err)
	msg := "upstream failure"
	var ae *apperrors.Error
	if status != http.StatusBadGateway && errors.As(err, &ae) {
		msg = ae.Message
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.JSON(status, gin.H{"error": msg})
}

// pageParams reads skip/limit query parameters. Missing values become zero and
// the services apply their defaults.
func pageParams(c *gin.Context) (skip, limit int, err error) {
	if skip, err = intQuery(c, "skip"); err != nil {
		return 0, 0, err
	}
	if limit, err = intQuery(c, "limit"); err != nil {
		return 0, 0, err
	}
	return skip, limit, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation("%s must be an integer", key)
	}
	return n, nil
}

// dateQuery parses ?date=YYYY-MM-DD; an absent date is the zero time.
func dateQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(models.DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.Validation("date must be YYYY-MM-DD")
	}
	return d, nil
}

func parseTimestamp(field, raw string) (time.Time, error) {
	t, err := models.ParseLocalTime(raw)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid %s: %v", field, err)
	}
	return t, nil
}

func parseOptionalTimestamp(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
