package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(now time.Time) *authService {
	s := NewAuthService("test-secret", time.Hour, bcrypt.MinCost).(*authService)
	s.now = func() time.Time { return now }
	return s
}

func TestAuthService_Passwords(t *testing.T) {
	s := newTestAuth(time.Now())
	hash, err := s.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, s.CheckPassword(hash, "hunter22"))
	assert.False(t, s.CheckPassword(hash, "hunter23"))
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	issued := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := newTestAuth(issued)

	token, exp, err := s.IssueToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), exp)

	userID, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestAuthService_ParseRejects(t *testing.T) {
	issued := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := newTestAuth(issued)
	token, _, err := s.IssueToken("user-1")
	require.NoError(t, err)

	t.Run("expired beyond leeway", func(t *testing.T) {
		later := newTestAuth(issued.Add(time.Hour + tokenLeeway + time.Second))
		_, err := later.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("within leeway", func(t *testing.T) {
		later := newTestAuth(issued.Add(time.Hour + time.Minute))
		_, err := later.ParseToken(token)
		assert.NoError(t, err)
	})
	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService("other-secret", time.Hour, bcrypt.MinCost).(*authService)
		other.now = s.now
		_, err := other.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := s.ParseToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
