package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/models"
	"gorm.io/gorm"
)

// ownedCompanyIDs returns a subquery selecting the ids of every company the
// caller owns. Services scope all reads and writes through it.
func ownedCompanyIDs(db *gorm.DB, ident auth.Identity) *gorm.DB {
	q := db.Model(&models.Company{}).Select("id")
	if ident.UserID != nil {
		return q.Where("user_id = ?", *ident.UserID)
	}
	return q.Where("guest_id = ?", *ident.GuestID)
}

// ownedCompany resolves a company and verifies the caller owns it. Ownership
// failures come back as NotFound so callers cannot distinguish "not yours"
// from "does not exist".
func ownedCompany(db *gorm.DB, companyID uint, ident auth.Identity) (*models.Company, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	q := db.Where("id = ?", companyID)
	if ident.UserID != nil {
		q = q.Where("user_id = ?", *ident.UserID)
	} else {
		q = q.Where("guest_id = ?", *ident.GuestID)
	}
	var company models.Company
	if err := q.First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("company not found")
		}
		return nil, apperr.Internal(err)
	}
	return &company, nil
}

// trimToNil trims whitespace and maps the empty string to NULL, so optional
// text fields never store blanks.
func trimToNil(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseDate accepts an RFC 3339 timestamp or a bare calendar date. Bare dates
// come back as midnight UTC, which the all-day rule then rewrites.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// normalizeAllDay rewrites an exact-midnight UTC timestamp to 03:00 UTC
// (noon JST). Without this an all-day date renders on the previous calendar
// day for any client east of UTC.
func normalizeAllDay(t time.Time) time.Time {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return time.Date(u.Year(), u.Month(), u.Day(), 3, 0, 0, 0, time.UTC)
	}
	return u
}
