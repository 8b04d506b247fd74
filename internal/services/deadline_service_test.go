package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/models"
	"github.com/shukatsu-compass/backend/internal/services"
	"github.com/shukatsu-compass/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDeadlineTest(t *testing.T) (*services.DeadlineService, *gorm.DB, auth.Identity, *models.Company) {
	t.Helper()
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "taro@example.com")
	company := testutil.CreateCompany(t, db, &user.ID, nil, "Mizuho Trading")
	return services.NewDeadlineService(db), db, auth.UserIdentity(user.ID), company
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func completedAt(value *string) dtos.OptionalString {
	return dtos.OptionalString{Set: true, Value: value}
}

func appCode(t *testing.T, err error) apperr.Code {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestAllDayNormalization(t *testing.T) {
	tests := []struct {
		name    string
		dueDate string
		want    time.Time
	}{
		{
			name:    "utc midnight shifts to noon jst",
			dueDate: "2025-06-01T00:00:00Z",
			want:    time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name:    "bare date is treated as all-day",
			dueDate: "2025-06-01",
			want:    time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name:    "explicit time is stored unchanged",
			dueDate: "2025-06-01T10:30:00Z",
			want:    time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "jst midnight is not utc midnight",
			dueDate: "2025-06-01T00:00:00+09:00",
			want:    time.Date(2025, 5, 31, 15, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, ident, company := setupDeadlineTest(t)
			deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))

			updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
				&dtos.DeadlineUpdateRequest{DueDate: strPtr(tt.dueDate)}, ident)
			require.NoError(t, err)
			assert.True(t, updated.DueDate.Equal(tt.want), "got %v, want %v", updated.DueDate, tt.want)
		})
	}
}

func TestCompletedAtIsNotAllDayNormalized(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(strPtr("2025-06-01T00:00:00Z"))}, ident)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestConfirmationCreatesThreeTasks(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	due := time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC)
	deadline := testutil.CreateDeadline(t, db, company.ID, due)

	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{IsConfirmed: boolPtr(true)}, ident)
	require.NoError(t, err)
	assert.True(t, updated.IsConfirmed)

	var tasks []models.Task
	require.NoError(t, db.Where("deadline_id = ?", deadline.ID).Order("sort_order asc").Find(&tasks).Error)
	require.Len(t, tasks, 3)
	for i, task := range tasks {
		assert.Equal(t, i, task.SortOrder)
		assert.True(t, task.IsAutoGenerated)
		assert.Equal(t, models.TaskStatusOpen, task.Status)
		assert.Equal(t, company.ID, task.CompanyID)
		require.NotNil(t, task.DueDate)
		assert.True(t, task.DueDate.Equal(due))
	}
}

func TestConfirmationGuardAgainstReconfirm(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	_, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{IsConfirmed: boolPtr(true)}, ident)
	require.NoError(t, err)

	// Confirming again must not duplicate the generated tasks.
	_, err = svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{IsConfirmed: boolPtr(true)}, ident)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Where("deadline_id = ?", deadline.ID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestConfirmationUsesPreUpdateDueDate(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	oldDue := time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC)
	deadline := testutil.CreateDeadline(t, db, company.ID, oldDue)

	// One patch that both confirms and moves the due date: the generated
	// tasks must carry the due date the deadline had before this update.
	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{
			IsConfirmed: boolPtr(true),
			DueDate:     strPtr("2025-08-15T10:00:00Z"),
		}, ident)
	require.NoError(t, err)
	assert.True(t, updated.DueDate.Equal(time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)))

	var tasks []models.Task
	require.NoError(t, db.Where("deadline_id = ?", deadline.ID).Find(&tasks).Error)
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		require.NotNil(t, task.DueDate)
		assert.True(t, task.DueDate.Equal(oldDue))
	}
}

func TestCompletionCascade(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))
	t1 := testutil.CreateTask(t, db, company.ID, &deadline.ID, "book test slot", models.TaskStatusOpen)
	t2 := testutil.CreateTask(t, db, company.ID, &deadline.ID, "review past questions", models.TaskStatusOpen)
	alreadyDone := testutil.CreateTask(t, db, company.ID, &deadline.ID, "register account", models.TaskStatusDone)

	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(strPtr("2025-06-20T09:00:00Z"))}, ident)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)

	assert.ElementsMatch(t, models.TaskIDList{t1.ID, t2.ID}, updated.AutoCompletedTaskIDs)

	var tasks []models.Task
	require.NoError(t, db.Where("deadline_id = ?", deadline.ID).Find(&tasks).Error)
	for _, task := range tasks {
		assert.Equal(t, models.TaskStatusDone, task.Status, "task %q", task.Title)
	}

	// The pre-existing done task must not be in the recorded set.
	assert.False(t, updated.AutoCompletedTaskIDs.Contains(alreadyDone.ID))
}

func TestCompletionWithNoOpenTasksStoresEmptySet(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(strPtr("2025-06-20T09:00:00Z"))}, ident)
	require.NoError(t, err)
	require.NotNil(t, updated.AutoCompletedTaskIDs)
	assert.Len(t, updated.AutoCompletedTaskIDs, 0)

	var stored models.Deadline
	require.NoError(t, db.First(&stored, deadline.ID).Error)
	require.NotNil(t, stored.AutoCompletedTaskIDs)
	assert.Len(t, stored.AutoCompletedTaskIDs, 0)
}

func TestReversalPrecision(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))
	t1 := testutil.CreateTask(t, db, company.ID, &deadline.ID, "draft", models.TaskStatusOpen)
	t2 := testutil.CreateTask(t, db, company.ID, &deadline.ID, "polish", models.TaskStatusOpen)

	_, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(strPtr("2025-06-20T09:00:00Z"))}, ident)
	require.NoError(t, err)

	// A task the user completed independently after the cascade is linked to
	// the same deadline but not in the recorded set.
	independent := testutil.CreateTask(t, db, company.ID, &deadline.ID, "send thank-you note", models.TaskStatusDone)

	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(nil)}, ident)
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
	assert.Nil(t, updated.AutoCompletedTaskIDs)

	var stored models.Task
	require.NoError(t, db.First(&stored, t1.ID).Error)
	assert.Equal(t, models.TaskStatusOpen, stored.Status)
	assert.Nil(t, stored.CompletedAt)
	stored = models.Task{}
	require.NoError(t, db.First(&stored, t2.ID).Error)
	assert.Equal(t, models.TaskStatusOpen, stored.Status)
	stored = models.Task{}
	require.NoError(t, db.First(&stored, independent.ID).Error)
	assert.Equal(t, models.TaskStatusDone, stored.Status)
}

func TestReversalSkipsTasksUserReopened(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))
	t1 := testutil.CreateTask(t, db, company.ID, &deadline.ID, "draft", models.TaskStatusOpen)

	_, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(strPtr("2025-06-20T09:00:00Z"))}, ident)
	require.NoError(t, err)

	// User reopens the task by hand; the reversal only touches rows that are
	// still done, so this one keeps its hand-edited state.
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", t1.ID).
		Updates(map[string]any{"status": models.TaskStatusOpen, "completed_at": nil}).Error)

	_, err = svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(nil)}, ident)
	require.NoError(t, err)

	var stored models.Task
	require.NoError(t, db.First(&stored, t1.ID).Error)
	assert.Equal(t, models.TaskStatusOpen, stored.Status)
}

func TestReReversalIsNoOp(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))
	task := testutil.CreateTask(t, db, company.ID, &deadline.ID, "draft", models.TaskStatusDone)

	// completedAt is already null: an explicit null patch performs no task
	// writes at all.
	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(nil)}, ident)
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, models.TaskStatusDone, stored.Status)
}

func TestValidationRejectsBlankTitle(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	_, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{Title: strPtr("   ")}, ident)
	assert.Equal(t, apperr.CodeValidation, appCode(t, err))

	// No write happened.
	var stored models.Deadline
	require.NoError(t, db.First(&stored, deadline.ID).Error)
	assert.Equal(t, "ES submission", stored.Title)
	assert.Equal(t, 0, stored.LockVersion)
}

func TestValidationRejectsBadInput(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		patch dtos.DeadlineUpdateRequest
	}{
		{"unknown type", dtos.DeadlineUpdateRequest{Type: strPtr("karaoke")}},
		{"unparseable due date", dtos.DeadlineUpdateRequest{DueDate: strPtr("next tuesday")}},
		{"unparseable completed at", dtos.DeadlineUpdateRequest{CompletedAt: completedAt(strPtr("soon"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID, &tt.patch, ident)
			assert.Equal(t, apperr.CodeValidation, appCode(t, err))
		})
	}
}

func TestAuthorizationOpacity(t *testing.T) {
	svc, db, _, _ := setupDeadlineTest(t)
	other := testutil.CreateUser(t, db, "hanako@example.com")
	otherIdent := auth.UserIdentity(other.ID)

	owner := testutil.CreateUser(t, db, "owner@example.com")
	ownedByOther := testutil.CreateCompany(t, db, &owner.ID, nil, "Secret Holdings")
	deadline := testutil.CreateDeadline(t, db, ownedByOther.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	patch := &dtos.DeadlineUpdateRequest{Title: strPtr("probe")}

	_, errForeign := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID, patch, otherIdent)
	_, errMissing := svc.ApplyDeadlineUpdate(context.Background(), 999999, patch, otherIdent)

	// An existing deadline owned by someone else and a nonexistent id must
	// report identically.
	assert.Equal(t, apperr.CodeNotFound, appCode(t, errForeign))
	assert.Equal(t, apperr.CodeNotFound, appCode(t, errMissing))
	var foreignErr, missingErr *apperr.Error
	require.True(t, errors.As(errForeign, &foreignErr))
	require.True(t, errors.As(errMissing, &missingErr))
	assert.Equal(t, missingErr.Message, foreignErr.Message)
}

func TestNoIdentityIsUnauthorized(t *testing.T) {
	svc, db, _, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	_, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{Title: strPtr("x")}, auth.Identity{})
	assert.Equal(t, apperr.CodeUnauthorized, appCode(t, err))
}

func TestGuestOwnershipAuthorizes(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := services.NewDeadlineService(db)
	guest := testutil.CreateGuest(t, db, "device-abc123")
	company := testutil.CreateCompany(t, db, nil, &guest.ID, "Guest Corp")
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{Memo: strPtr("  bring transcript  ")}, auth.GuestIdentity(guest.ID))
	require.NoError(t, err)
	require.NotNil(t, updated.Memo)
	assert.Equal(t, "bring transcript", *updated.Memo)
}

func TestFieldMergeTrimsToNull(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{
			Description: strPtr("   "),
			Memo:        strPtr(" check dress code "),
			SourceURL:   strPtr(""),
		}, ident)
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	require.NotNil(t, updated.Memo)
	assert.Equal(t, "check dress code", *updated.Memo)
	assert.Nil(t, updated.SourceURL)

	var stored models.Deadline
	require.NoError(t, db.First(&stored, deadline.ID).Error)
	assert.Nil(t, stored.Description)
	assert.Equal(t, 1, stored.LockVersion)
}

// Mirrors the full lifecycle: confirm, complete, revert.
func TestDeadlineLifecycleEndToEnd(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))
	t1 := testutil.CreateTask(t, db, company.ID, &deadline.ID, "research company", models.TaskStatusOpen)
	t2 := testutil.CreateTask(t, db, company.ID, &deadline.ID, "ask for referral", models.TaskStatusOpen)

	// Confirm: three new tasks appear, the two existing ones are untouched.
	updated, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{IsConfirmed: boolPtr(true)}, ident)
	require.NoError(t, err)
	assert.True(t, updated.IsConfirmed)

	var open []models.Task
	require.NoError(t, db.Where("deadline_id = ? AND status = ?", deadline.ID, models.TaskStatusOpen).Find(&open).Error)
	require.Len(t, open, 5)

	// Complete: all five open tasks cascade to done and are recorded.
	updated, err = svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(strPtr("2025-06-01T00:00:00Z"))}, ident)
	require.NoError(t, err)
	require.Len(t, updated.AutoCompletedTaskIDs, 5)
	assert.True(t, updated.AutoCompletedTaskIDs.Contains(t1.ID))
	assert.True(t, updated.AutoCompletedTaskIDs.Contains(t2.ID))

	var doneCount int64
	require.NoError(t, db.Model(&models.Task{}).
		Where("deadline_id = ? AND status = ?", deadline.ID, models.TaskStatusDone).
		Count(&doneCount).Error)
	assert.EqualValues(t, 5, doneCount)

	// Revert: all five reopen, the record clears.
	updated, err = svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
		&dtos.DeadlineUpdateRequest{CompletedAt: completedAt(nil)}, ident)
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
	assert.Nil(t, updated.AutoCompletedTaskIDs)

	var openCount int64
	require.NoError(t, db.Model(&models.Task{}).
		Where("deadline_id = ? AND status = ?", deadline.ID, models.TaskStatusOpen).
		Count(&openCount).Error)
	assert.EqualValues(t, 5, openCount)
}

func TestLockVersionIncrements(t *testing.T) {
	svc, db, ident, company := setupDeadlineTest(t)
	deadline := testutil.CreateDeadline(t, db, company.ID, time.Date(2025, 7, 1, 3, 0, 0, 0, time.UTC))

	for i := 1; i <= 3; i++ {
		_, err := svc.ApplyDeadlineUpdate(context.Background(), deadline.ID,
			&dtos.DeadlineUpdateRequest{Memo: strPtr("round")}, ident)
		require.NoError(t, err)
		var stored models.Deadline
		require.NoError(t, db.First(&stored, deadline.ID).Error)
		assert.Equal(t, i, stored.LockVersion)
	}
}
