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

type TaskService struct {
	DB *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db}
}

type TaskListFilter struct {
	CompanyID  *uint
	DeadlineID *uint
	Status     *models.TaskStatus
}

func (s *TaskService) List(ctx context.Context, ident auth.Identity, filter TaskListFilter) ([]models.Task, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	db := s.DB.WithContext(ctx)
	q := db.Where("company_id IN (?)", ownedCompanyIDs(db, ident))
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.DeadlineID != nil {
		q = q.Where("deadline_id = ?", *filter.DeadlineID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	var tasks []models.Task
	if err := q.Order("sort_order asc, created_at asc").Find(&tasks).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, req *dtos.TaskCreateRequest, ident auth.Identity) (*models.Task, error) {
	db := s.DB.WithContext(ctx)
	if _, err := ownedCompany(db, req.CompanyID, ident); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title must not be empty")
	}
	task := &models.Task{
		CompanyID:     req.CompanyID,
		ApplicationID: req.ApplicationID,
		DeadlineID:    req.DeadlineID,
		Title:         title,
	}
	if req.Type != "" {
		taskType := models.TaskType(req.Type)
		if !taskType.Valid() {
			return nil, apperr.Validation("invalid task type")
		}
		task.Type = taskType
	}
	if req.DeadlineID != nil {
		var deadline models.Deadline
		if err := db.Where("id = ? AND company_id = ?", *req.DeadlineID, req.CompanyID).
			First(&deadline).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Validation("deadline does not belong to the company")
			}
			return nil, apperr.Internal(err)
		}
		// Inherit the deadline's due date unless one was given explicitly.
		if req.DueDate == nil {
			due := deadline.DueDate
			task.DueDate = &due
		}
	}
	if req.DueDate != nil {
		parsed, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, apperr.Validation("invalid due_date")
		}
		utc := parsed.UTC()
		task.DueDate = &utc
	}
	if err := db.Create(task).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return task, nil
}

// Update toggles status and edits title/sort order. Marking a task done sets
// completed_at; reopening clears it.
func (s *TaskService) Update(ctx context.Context, taskID uint, req *dtos.TaskUpdateRequest, ident auth.Identity) (*models.Task, error) {
	task, err := s.authorizedTask(ctx, taskID, ident)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		task.Title = title
	}
	if req.SortOrder != nil {
		task.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		switch status {
		case models.TaskStatusDone:
			if task.Status != models.TaskStatusDone {
				now := time.Now().UTC()
				task.CompletedAt = &now
			}
		case models.TaskStatusOpen:
			task.CompletedAt = nil
		default:
			return nil, apperr.Validation("invalid task status")
		}
		task.Status = status
	}
	if err := s.DB.WithContext(ctx).Save(task).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return task, nil
}

// Reorder assigns sort order from the position of each id in the request.
// Every id must resolve to a task the caller owns; an id that does not is
// reported the same way as a missing one.
func (s *TaskService) Reorder(ctx context.Context, taskIDs []uint, ident auth.Identity) ([]models.Task, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if len(taskIDs) == 0 {
		return nil, apperr.Validation("task_ids must not be empty")
	}
	seen := make(map[uint]bool, len(taskIDs))
	for _, id := range taskIDs {
		if seen[id] {
			return nil, apperr.Validation("task_ids must not repeat")
		}
		seen[id] = true
	}

	db := s.DB.WithContext(ctx)
	var owned int64
	if err := db.Model(&models.Task{}).
		Where("id IN ? AND company_id IN (?)", taskIDs, ownedCompanyIDs(db, ident)).
		Count(&owned).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if owned != int64(len(taskIDs)) {
		return nil, apperr.NotFound("task not found")
	}

	now := time.Now().UTC()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		for i, id := range taskIDs {
			if err := tx.Model(&models.Task{}).Where("id = ?", id).
				Updates(map[string]any{"sort_order": i, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, apperr.Internal(txErr)
	}

	var tasks []models.Task
	if err := db.Where("id IN ?", taskIDs).
		Order("sort_order asc").Find(&tasks).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func (s *TaskService) authorizedTask(ctx context.Context, taskID uint, ident auth.Identity) (*models.Task, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	var task models.Task
	if err := s.DB.WithContext(ctx).First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task not found")
		}
		return nil, apperr.Internal(err)
	}
	if _, err := ownedCompany(s.DB.WithContext(ctx), task.CompanyID, ident); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Code == apperr.CodeNotFound {
			return nil, apperr.NotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}
