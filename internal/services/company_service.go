package services

import (
	"context"
	"strings"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/dtos"
	"github.com/shukatsu-compass/backend/internal/models"
	"gorm.io/gorm"
)

type CompanyService struct {
	DB *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{DB: db}
}

func (s *CompanyService) List(ctx context.Context, ident auth.Identity) ([]models.Company, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	q := s.DB.WithContext(ctx)
	if ident.UserID != nil {
		q = q.Where("user_id = ?", *ident.UserID)
	} else {
		q = q.Where("guest_id = ?", *ident.GuestID)
	}
	var companies []models.Company
	if err := q.Order("created_at asc").Find(&companies).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return companies, nil
}

func (s *CompanyService) Get(ctx context.Context, companyID uint, ident auth.Identity) (*models.Company, error) {
	company, err := ownedCompany(s.DB.WithContext(ctx), companyID, ident)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).
		Preload("Applications").
		Preload("Deadlines").
		First(company, company.ID).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return company, nil
}

func (s *CompanyService) Create(ctx context.Context, req *dtos.CompanyCreateRequest, ident auth.Identity) (*models.Company, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name must not be empty")
	}
	company := &models.Company{
		UserID:   ident.UserID,
		GuestID:  ident.GuestID,
		Name:     name,
		Industry: req.Industry,
		Memo:     req.Memo,
	}
	if req.Status != "" {
		company.Status = req.Status
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, companyID uint, req *dtos.CompanyUpdateRequest, ident auth.Identity) (*models.Company, error) {
	company, err := ownedCompany(s.DB.WithContext(ctx), companyID, ident)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		company.Name = name
	}
	if req.Industry != nil {
		company.Industry = *req.Industry
	}
	if req.Status != nil {
		company.Status = *req.Status
	}
	if req.Memo != nil {
		company.Memo = *req.Memo
	}
	if err := s.DB.WithContext(ctx).Save(company).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return company, nil
}

func (s *CompanyService) Delete(ctx context.Context, companyID uint, ident auth.Identity) error {
	company, err := ownedCompany(s.DB.WithContext(ctx), companyID, ident)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(company).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// FindByName matches a company name mentioned in free text against the
// caller's tracked companies. Very short names are skipped to avoid false
// positives.
func (s *CompanyService) FindByName(ctx context.Context, name string, ident auth.Identity) (*models.Company, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	companies, err := s.List(ctx, ident)
	if err != nil {
		return nil, err
	}
	return MatchCompany(companies, name), nil
}

// MatchCompany applies the name-matching rules against an in-memory list.
// Returns nil when nothing matches.
func MatchCompany(companies []models.Company, name string) *models.Company {
	needle := strings.ToLower(strings.TrimSpace(name))
	if len(needle) < 3 {
		return nil
	}
	for i := range companies {
		tracked := strings.ToLower(companies[i].Name)
		if len(tracked) < 3 {
			continue
		}
		if strings.Contains(needle, tracked) || strings.Contains(tracked, needle) {
			return &companies[i]
		}
	}
	return nil
}
