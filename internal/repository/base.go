// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"newsletter/internal/models"

	"gorm.io/gorm"
)

// MaxPageSize caps every list query.
const MaxPageSize = 100

// paginate applies limit and offset when positive. Limits are clamped to MaxPageSize;
// a zero limit leaves the list unbounded.
func paginate(db *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	return db
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed".
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// wrapErr passes AppErrors through and hides everything else behind an internal error.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
