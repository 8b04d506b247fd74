package services

import (
	"context"
	"errors"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/models"
	"gorm.io/gorm"
)

type EntrySheetService struct {
	DB *gorm.DB
}

func NewEntrySheetService(db *gorm.DB) *EntrySheetService {
	return &EntrySheetService{DB: db}
}

func (s *EntrySheetService) List(ctx context.Context, companyID uint, ident auth.Identity) ([]models.EntrySheet, error) {
	if _, err := ownedCompany(s.DB.WithContext(ctx), companyID, ident); err != nil {
		return nil, err
	}
	var sheets []models.EntrySheet
	if err := s.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at asc").
		Find(&sheets).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return sheets, nil
}

func (s *EntrySheetService) Get(ctx context.Context, entrySheetID uint, ident auth.Identity) (*models.EntrySheet, error) {
	sheet, err := s.authorizedEntrySheet(ctx, entrySheetID, ident)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Preload("Reviews").First(sheet, sheet.ID).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return sheet, nil
}

func (s *EntrySheetService) Create(ctx context.Context, req *dtos.EntrySheetCreateRequest, ident auth.Identity) (*models.EntrySheet, error) {
	if _, err := ownedCompany(s.DB.WithContext(ctx), req.CompanyID, ident); err != nil {
		return nil, err
	}
	sheet := &models.EntrySheet{
		CompanyID:     req.CompanyID,
		ApplicationID: req.ApplicationID,
		Question:      req.Question,
		Body:          req.Body,
		CharLimit:     req.CharLimit,
	}
	if err := s.DB.WithContext(ctx).Create(sheet).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return sheet, nil
}

func (s *EntrySheetService) Update(ctx context.Context, entrySheetID uint, req *dtos.EntrySheetUpdateRequest, ident auth.Identity) (*models.EntrySheet, error) {
	sheet, err := s.authorizedEntrySheet(ctx, entrySheetID, ident)
	if err != nil {
		return nil, err
	}
	if req.Question != nil {
		sheet.Question = *req.Question
	}
	if req.Body != nil {
		sheet.Body = *req.Body
	}
	if req.CharLimit != nil {
		sheet.CharLimit = *req.CharLimit
	}
	if err := s.DB.WithContext(ctx).Save(sheet).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return sheet, nil
}

func (s *EntrySheetService) Delete(ctx context.Context, entrySheetID uint, ident auth.Identity) error {
	sheet, err := s.authorizedEntrySheet(ctx, entrySheetID, ident)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(sheet).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *EntrySheetService) authorizedEntrySheet(ctx context.Context, entrySheetID uint, ident auth.Identity) (*models.EntrySheet, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	var sheet models.EntrySheet
	if err := s.DB.WithContext(ctx).First(&sheet, entrySheetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("entry sheet not found")
		}
		return nil, apperr.Internal(err)
	}
	if _, err := ownedCompany(s.DB.WithContext(ctx), sheet.CompanyID, ident); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Code == apperr.CodeNotFound {
			return nil, apperr.NotFound("entry sheet not found")
		}
		return nil, err
	}
	return &sheet, nil
}
