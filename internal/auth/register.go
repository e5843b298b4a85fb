package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// RegisterRequest opens a customer account.
type RegisterRequest struct {
	FirstName       string  `json:"first_name" validate:"required,max=100"`
	LastName        string  `json:"last_name" validate:"required,max=100"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	PreferredLocale string  `json:"preferred_locale,omitempty" validate:"omitempty,locale_tag"`
}

type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type localeChecker interface {
	Default() string
	IsSupported(locale string) bool
}

type RegisterServiceParams struct {
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	Locales         localeChecker
	PasswordConfig  config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	locales     localeChecker
	passwordCfg config.PasswordConfig
}

func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	switch {
	case params.TxRunner == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	case params.Locales == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "locale resolver required")
	}
	svc := &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		locales:     params.Locales,
		passwordCfg: params.PasswordConfig,
	}
	if svc.userRepo == nil {
		svc.userRepo = func(tx *gorm.DB) registerUserRepository { return users.NewRepository(tx) }
	}
	return svc, nil
}

// Register creates a customer account. The lookup and insert share a transaction; a
// concurrent signup that slips past the lookup still surfaces as a conflict through the
// unique index.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	account, err := s.newAccount(req)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		accounts := s.userRepo(tx)

		_, err := accounts.FindByEmail(ctx, account.Email)
		switch {
		case err == nil:
			return emailTaken()
		case !repo.IsNotFound(err):
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		if _, err := accounts.Create(ctx, account); err != nil {
			if db.IsUniqueViolation(err, "") {
				return emailTaken()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		return nil
	})
}

// newAccount normalizes and checks the request before any database work.
func (s *registerService) newAccount(req RegisterRequest) (users.CreateUserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return users.CreateUserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := security.CheckPasswordPolicy(req.Password); err != nil {
		return users.CreateUserDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	locale := strings.ToLower(strings.TrimSpace(req.PreferredLocale))
	if locale == "" {
		locale = s.locales.Default()
	}
	if !s.locales.IsSupported(locale) {
		return users.CreateUserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported locale").
			WithDetails(map[string]any{"preferred_locale": locale})
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return users.CreateUserDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return users.CreateUserDTO{
		Email:           email,
		PasswordHash:    hash,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           req.Phone,
		PreferredLocale: locale,
		Role:            enums.UserRoleCustomer,
	}, nil
}

func emailTaken() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "email already registered").
		WithDetails(map[string]string{"field": "email"})
}
