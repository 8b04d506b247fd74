package services_test

import (
	"context"
	"testing"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/models"
	"github.com/shukatsu-compass/backend/internal/services"
	"github.com/shukatsu-compass/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyOwnershipIsolation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := services.NewCompanyService(db)
	user := testutil.CreateUser(t, db, "taro@example.com")
	guest := testutil.CreateGuest(t, db, "device-xyz")

	_, err := svc.Create(context.Background(), &dtos.CompanyCreateRequest{Name: "User Corp"}, auth.UserIdentity(user.ID))
	require.NoError(t, err)
	guestCompany, err := svc.Create(context.Background(), &dtos.CompanyCreateRequest{Name: "Guest Corp"}, auth.GuestIdentity(guest.ID))
	require.NoError(t, err)

	userList, err := svc.List(context.Background(), auth.UserIdentity(user.ID))
	require.NoError(t, err)
	require.Len(t, userList, 1)
	assert.Equal(t, "User Corp", userList[0].Name)

	// A user reading a guest's company gets the same answer as a missing id.
	_, err = svc.Get(context.Background(), guestCompany.ID, auth.UserIdentity(user.ID))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)
}

func TestCompanyCreateRejectsBlankName(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := services.NewCompanyService(db)
	user := testutil.CreateUser(t, db, "taro@example.com")

	_, err := svc.Create(context.Background(), &dtos.CompanyCreateRequest{Name: "  "}, auth.UserIdentity(user.ID))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
}

func TestMatchCompany(t *testing.T) {
	companies := []models.Company{
		{Name: "Stripe"},
		{Name: "Go"}, // too short, must never match
		{Name: "Rakuten Group"},
	}

	tests := []struct {
		name   string
		needle string
		want   string
	}{
		{"exact", "Stripe", "Stripe"},
		{"mention inside longer text", "Stripe Recruiting Team", "Stripe"},
		{"tracked name contains needle", "Rakuten", "Rakuten Group"},
		{"case insensitive", "stripe", "Stripe"},
		{"short needle never matches", "Go", ""},
		{"unknown", "Umbrella Corp", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.MatchCompany(companies, tt.needle)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}
