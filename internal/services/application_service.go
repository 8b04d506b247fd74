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

type ApplicationService struct {
	DB *gorm.DB
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{DB: db}
}

func (s *ApplicationService) List(ctx context.Context, companyID uint, ident auth.Identity) ([]models.Application, error) {
	if _, err := ownedCompany(s.DB.WithContext(ctx), companyID, ident); err != nil {
		return nil, err
	}
	var apps []models.Application
	if err := s.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at asc").
		Find(&apps).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return apps, nil
}

func (s *ApplicationService) Create(ctx context.Context, companyID uint, req *dtos.ApplicationCreateRequest, ident auth.Identity) (*models.Application, error) {
	if _, err := ownedCompany(s.DB.WithContext(ctx), companyID, ident); err != nil {
		return nil, err
	}
	app := &models.Application{
		CompanyID: companyID,
		Channel:   req.Channel,
		Notes:     req.Notes,
	}
	if req.Status != "" {
		app.Status = req.Status
	}
	if err := s.DB.WithContext(ctx).Create(app).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return app, nil
}

func (s *ApplicationService) Update(ctx context.Context, applicationID uint, req *dtos.ApplicationUpdateRequest, ident auth.Identity) (*models.Application, error) {
	app, err := s.authorizedApplication(ctx, applicationID, ident)
	if err != nil {
		return nil, err
	}
	if req.Channel != nil {
		app.Channel = *req.Channel
	}
	if req.Status != nil {
		app.Status = *req.Status
	}
	if req.Notes != nil {
		app.Notes = *req.Notes
	}
	if err := s.DB.WithContext(ctx).Save(app).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return app, nil
}

func (s *ApplicationService) Delete(ctx context.Context, applicationID uint, ident auth.Identity) error {
	app, err := s.authorizedApplication(ctx, applicationID, ident)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(app).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *ApplicationService) authorizedApplication(ctx context.Context, applicationID uint, ident auth.Identity) (*models.Application, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	var app models.Application
	if err := s.DB.WithContext(ctx).First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("application not found")
		}
		return nil, apperr.Internal(err)
	}
	if _, err := ownedCompany(s.DB.WithContext(ctx), app.CompanyID, ident); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Code == apperr.CodeNotFound {
			return nil, apperr.NotFound("application not found")
		}
		return nil, err
	}
	return &app, nil
}
