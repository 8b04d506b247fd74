package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	DB     *gorm.DB
	Tokens *auth.TokenProvider
}

func NewUserService(db *gorm.DB, tokens *auth.TokenProvider) *UserService {
	return &UserService{DB: db, Tokens: tokens}
}

// Register creates a user and returns a session token.
func (s *UserService) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return "", apperr.Internal(err)
	}
	if count > 0 {
		return "", apperr.Validation("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Internal(err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return "", apperr.Internal(err)
	}
	return s.issue(user.ID)
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Unauthorized("invalid email or password")
		}
		return "", apperr.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Unauthorized("invalid email or password")
	}
	return s.issue(user.ID)
}

func (s *UserService) issue(userID uint) (string, error) {
	token, err := s.Tokens.Issue(userID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// CreateGuest provisions a fresh guest with a server-issued device token,
// for clients that have no token yet.
func (s *UserService) CreateGuest(ctx context.Context) (*models.Guest, error) {
	guest := &models.Guest{DeviceToken: uuid.NewString()}
	if err := s.DB.WithContext(ctx).Create(guest).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return guest, nil
}

// ResolveGuest finds or provisions the guest behind a device token. Tokens
// are opaque; the first request with a fresh token creates the guest row.
func (s *UserService) ResolveGuest(ctx context.Context, deviceToken string) (*models.Guest, error) {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return nil, apperr.Unauthorized("empty device token")
	}
	var guest models.Guest
	err := s.DB.WithContext(ctx).
		Where(models.Guest{DeviceToken: deviceToken}).
		FirstOrCreate(&guest).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &guest, nil
}
