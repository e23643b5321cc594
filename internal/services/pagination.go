package services

import "chrona/internal/apperrors"

const (
	defaultPageLimit = 100
	maxPageLimit     = 500
)

func normalizePage(skip, limit int) (int, int, error) {
	if skip < 0 {
		return 0, 0, apperrors.Validation("skip must not be negative")
	}
	if limit < 0 {
		return 0, 0, apperrors.Validation("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit, nil
}
