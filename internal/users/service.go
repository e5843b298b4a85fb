package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

type localeChecker interface {
	IsSupported(locale string) bool
}

// ServiceParams groups dependencies for the profile service.
type ServiceParams struct {
	Repo           *Repository
	Locales        localeChecker
	PasswordConfig config.PasswordConfig
}

// Service manages the signed-in user's own account.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
}

type service struct {
	repo        *Repository
	locales     localeChecker
	passwordCfg config.PasswordConfig
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repo required")
	}
	if params.Locales == nil {
		return nil, fmt.Errorf("locale checker required")
	}
	return &service{
		repo:        params.Repo,
		locales:     params.Locales,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	fields := map[string]any{}
	if input.FirstName != nil {
		value := strings.TrimSpace(*input.FirstName)
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name cannot be blank")
		}
		fields["first_name"] = value
	}
	if input.LastName != nil {
		value := strings.TrimSpace(*input.LastName)
		if value == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name cannot be blank")
		}
		fields["last_name"] = value
	}
	if input.Phone != nil {
		value := strings.TrimSpace(*input.Phone)
		if value == "" {
			fields["phone"] = nil
		} else {
			fields["phone"] = value
		}
	}
	if input.PreferredLocale != nil {
		value := strings.ToLower(strings.TrimSpace(*input.PreferredLocale))
		if !s.locales.IsSupported(value) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported locale").WithDetails(map[string]any{
				"preferred_locale": value,
			})
		}
		fields["preferred_locale"] = value
	}

	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, mapLookupErr(err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return mapLookupErr(err)
	}
	ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}
	if err := security.CheckPasswordPolicy(input.NewPassword); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
}
