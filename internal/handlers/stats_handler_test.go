package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"chrona/internal/apperrors"
	"chrona/internal/models"
	"chrona/internal/services"
)

type stubUsers struct {
	services.UserService
	user *models.User
	err  error
}

func (s stubUsers) GetByID(context.Context, string) (*models.User, error) {
	return s.user, s.err
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestOwnerName(t *testing.T) {
	tests := []struct {
		name    string
		users   stubUsers
		want    string
		warning bool
	}{
		{"named user", stubUsers{user: &models.User{ID: "u1", Name: "Ada"}}, "Ada", false},
		{"no name", stubUsers{user: &models.User{ID: "u1"}}, "u1", false},
		{"missing user", stubUsers{err: apperrors.NotFound("user not found")}, "u1", false},
		{"store failure", stubUsers{err: apperrors.Upstream(errors.New("db down"), "load user")}, "u1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLog(t)
			h := NewStatsHandler(nil, tt.users, nil)

			assert.Equal(t, tt.want, h.ownerName(context.Background(), "u1"))
			if tt.warning {
				assert.Contains(t, logs.String(), "[stats][weeklyPdf][warn]")
				assert.Contains(t, logs.String(), "db down")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}
