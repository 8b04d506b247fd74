package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/models"
	"gorm.io/gorm"
)

// Titles of the three tasks generated when a deadline is confirmed,
// in sort order.
var autoGeneratedTaskTitles = [3]string{
	"Draft the entry sheet",
	"Prepare submission materials",
	"Submit the final version",
}

type DeadlineService struct {
	DB *gorm.DB
}

func NewDeadlineService(db *gorm.DB) *DeadlineService {
	return &DeadlineService{DB: db}
}

type DeadlineListFilter struct {
	CompanyID    *uint
	UpcomingOnly bool
}

func (s *DeadlineService) List(ctx context.Context, ident auth.Identity, filter DeadlineListFilter) ([]models.Deadline, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	db := s.DB.WithContext(ctx)
	q := db.Where("company_id IN (?)", ownedCompanyIDs(db, ident))
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.UpcomingOnly {
		q = q.Where("due_date >= ? AND completed_at IS NULL", time.Now().UTC())
	}
	var deadlines []models.Deadline
	if err := q.Order("due_date asc").Find(&deadlines).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return deadlines, nil
}

func (s *DeadlineService) Get(ctx context.Context, deadlineID uint, ident auth.Identity) (*models.Deadline, error) {
	return s.authorizedDeadline(ctx, deadlineID, ident)
}

func (s *DeadlineService) Create(ctx context.Context, req *dtos.DeadlineCreateRequest, ident auth.Identity) (*models.Deadline, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCompany(db, req.CompanyID, ident); err != nil {
		return nil, err
	}

	deadlineType := models.DeadlineType(req.Type)
	if !deadlineType.Valid() {
		return nil, apperr.Validation("invalid deadline type")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title must not be empty")
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return nil, apperr.Validation("invalid due_date")
	}
	if req.ApplicationID != nil {
		var count int64
		if err := db.Model(&models.Application{}).
			Where("id = ? AND company_id = ?", *req.ApplicationID, req.CompanyID).
			Count(&count).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if count == 0 {
			return nil, apperr.Validation("application does not belong to the company")
		}
	}

	deadline := &models.Deadline{
		CompanyID:     req.CompanyID,
		ApplicationID: req.ApplicationID,
		Type:          deadlineType,
		Title:         title,
		DueDate:       normalizeAllDay(dueDate),
	}
	if req.Description != nil {
		deadline.Description = trimToNil(*req.Description)
	}
	if req.Memo != nil {
		deadline.Memo = trimToNil(*req.Memo)
	}
	if err := db.Create(deadline).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return deadline, nil
}

// ApplyDeadlineUpdate is the deadline lifecycle entry point. It validates the
// patch, evaluates the completion / reversal / confirmation transitions
// against one pre-update snapshot of the deadline, performs the cascading
// task writes, and merges the patched fields — all inside a single
// transaction. A concurrent update to the same row aborts with Conflict.
func (s *DeadlineService) ApplyDeadlineUpdate(ctx context.Context, deadlineID uint, patch *dtos.DeadlineUpdateRequest, ident auth.Identity) (*models.Deadline, error) {
	deadline, err := s.authorizedDeadline(ctx, deadlineID, ident)
	if err != nil {
		return nil, err
	}

	// Validate everything before any write.
	var newType *models.DeadlineType
	if patch.Type != nil {
		t := models.DeadlineType(*patch.Type)
		if !t.Valid() {
			return nil, apperr.Validation("invalid deadline type")
		}
		newType = &t
	}
	var newTitle *string
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		newTitle = &t
	}
	var newDueDate *time.Time
	if patch.DueDate != nil {
		parsed, err := parseDate(*patch.DueDate)
		if err != nil {
			return nil, apperr.Validation("invalid due_date")
		}
		normalized := normalizeAllDay(parsed)
		newDueDate = &normalized
	}
	var newCompletedAt *time.Time
	if patch.CompletedAt.Set && patch.CompletedAt.Value != nil {
		parsed, err := parseDate(*patch.CompletedAt.Value)
		if err != nil {
			return nil, apperr.Validation("invalid completed_at")
		}
		utc := parsed.UTC()
		newCompletedAt = &utc
	}

	// Snapshot of the pre-update state. Every transition precondition below
	// reads from here, never from the row as it mutates, so a patch that
	// triggers several transitions at once cannot see its own effects.
	wasCompleted := deadline.CompletedAt != nil
	wasConfirmed := deadline.IsConfirmed
	dueDateBefore := deadline.DueDate
	recordedIDs := deadline.AutoCompletedTaskIDs
	version := deadline.LockVersion

	isCompletion := patch.CompletedAt.Set && patch.CompletedAt.Value != nil && !wasCompleted
	isReversal := patch.CompletedAt.Set && patch.CompletedAt.Value == nil && wasCompleted
	isConfirmation := patch.IsConfirmed != nil && *patch.IsConfirmed && !wasConfirmed

	now := time.Now().UTC()

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"updated_at":   now,
			"lock_version": version + 1,
		}

		// 1. Completion: close every open task of this deadline and remember
		// exactly which ones, so a later reversal reopens only those.
		if isCompletion {
			var openTasks []models.Task
			if err := tx.Where("deadline_id = ? AND status = ?", deadline.ID, models.TaskStatusOpen).
				Find(&openTasks).Error; err != nil {
				return err
			}
			ids := make(models.TaskIDList, 0, len(openTasks))
			for _, t := range openTasks {
				ids = append(ids, t.ID)
			}
			if len(ids) > 0 {
				if err := tx.Model(&models.Task{}).Where("id IN ?", []uint(ids)).
					Updates(map[string]any{
						"status":       models.TaskStatusDone,
						"completed_at": now,
						"updated_at":   now,
					}).Error; err != nil {
					return err
				}
			}
			deadline.AutoCompletedTaskIDs = ids
			updates["auto_completed_task_ids"] = ids
		}

		// 2. Reversal: reopen only the recorded task ids, and only the ones
		// still done. Tasks the user toggled through other means stay put.
		if isReversal {
			if len(recordedIDs) > 0 {
				if err := tx.Model(&models.Task{}).
					Where("id IN ? AND status = ?", []uint(recordedIDs), models.TaskStatusDone).
					Updates(map[string]any{
						"status":       models.TaskStatusOpen,
						"completed_at": nil,
						"updated_at":   now,
					}).Error; err != nil {
					return err
				}
			}
			deadline.AutoCompletedTaskIDs = nil
			updates["auto_completed_task_ids"] = nil
		}

		// 3. Confirmation: seed the three standard preparation tasks. The
		// wasConfirmed guard keeps a repeated confirm from duplicating them.
		if isConfirmation {
			due := dueDateBefore
			for i, title := range autoGeneratedTaskTitles {
				task := models.Task{
					CompanyID:       deadline.CompanyID,
					ApplicationID:   deadline.ApplicationID,
					DeadlineID:      &deadline.ID,
					Title:           title,
					Type:            models.TaskTypeES,
					Status:          models.TaskStatusOpen,
					IsAutoGenerated: true,
					SortOrder:       i,
					DueDate:         &due,
				}
				if err := tx.Create(&task).Error; err != nil {
					return err
				}
			}
		}

		// 4. Field merge.
		if newType != nil {
			deadline.Type = *newType
			updates["type"] = *newType
		}
		if newTitle != nil {
			deadline.Title = *newTitle
			updates["title"] = *newTitle
		}
		if patch.Description != nil {
			deadline.Description = trimToNil(*patch.Description)
			updates["description"] = deadline.Description
		}
		if patch.Memo != nil {
			deadline.Memo = trimToNil(*patch.Memo)
			updates["memo"] = deadline.Memo
		}
		if newDueDate != nil {
			deadline.DueDate = *newDueDate
			updates["due_date"] = *newDueDate
		}
		if patch.SourceURL != nil {
			deadline.SourceURL = trimToNil(*patch.SourceURL)
			updates["source_url"] = deadline.SourceURL
		}
		// IsConfirmed only ever moves false -> true; there is no reverse
		// transition through this workflow.
		if patch.IsConfirmed != nil && *patch.IsConfirmed {
			deadline.IsConfirmed = true
			updates["is_confirmed"] = true
		}
		if patch.CompletedAt.Set {
			deadline.CompletedAt = newCompletedAt
			if newCompletedAt != nil {
				updates["completed_at"] = *newCompletedAt
			} else {
				updates["completed_at"] = nil
			}
		}

		res := tx.Model(&models.Deadline{}).
			Where("id = ? AND lock_version = ?", deadline.ID, version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("deadline was modified concurrently")
		}
		return nil
	})
	if txErr != nil {
		var appErr *apperr.Error
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Internal(txErr)
	}

	deadline.UpdatedAt = now
	deadline.LockVersion = version + 1
	return deadline, nil
}

func (s *DeadlineService) Delete(ctx context.Context, deadlineID uint, ident auth.Identity) error {
	deadline, err := s.authorizedDeadline(ctx, deadlineID, ident)
	if err != nil {
		return err
	}
	// Deletion does not cascade to tasks; they keep their deadline_id.
	if err := s.DB.WithContext(ctx).Delete(deadline).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// authorizedDeadline loads a deadline and checks the caller owns its company.
// An existing deadline owned by someone else reports the same error as a
// missing one.
func (s *DeadlineService) authorizedDeadline(ctx context.Context, deadlineID uint, ident auth.Identity) (*models.Deadline, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	db := s.DB.WithContext(ctx)
	var deadline models.Deadline
	if err := db.First(&deadline, deadlineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("deadline not found")
		}
		return nil, apperr.Internal(err)
	}
	if _, err := ownedCompany(db, deadline.CompanyID, ident); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Code == apperr.CodeNotFound {
			return nil, apperr.NotFound("deadline not found")
		}
		return nil, err
	}
	return &deadline, nil
}
