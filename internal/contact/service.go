package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// CreateMessageInput is the contact form payload.
type CreateMessageInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
	Locale  string `json:"locale,omitempty"`
}

// MessageDTO is returned to the sender and to admins.
type MessageDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Locale    string     `json:"locale"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type MessagePage = pagination.Page[MessageDTO]

type localeChecker interface {
	Default() string
	IsSupported(locale string) bool
}

type Service interface {
	Submit(ctx context.Context, input CreateMessageInput, userID *uuid.UUID) (*MessageDTO, error)
	List(ctx context.Context, params pagination.Params) (*MessagePage, error)
}

type ServiceParams struct {
	Repo    *Repository
	Locales localeChecker
}

type service struct {
	repo    *Repository
	locales localeChecker
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("contact repo required")
	}
	if params.Locales == nil {
		return nil, fmt.Errorf("locale checker required")
	}
	return &service{
		repo:    params.Repo,
		locales: params.Locales,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Submit(ctx context.Context, input CreateMessageInput, userID *uuid.UUID) (*MessageDTO, error) {
	msg := &models.ContactMessage{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   strings.TrimSpace(input.Message),
		Locale:    s.locale(input.Locale),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, subject and message are required")
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store contact message")
	}
	dto := toDTO(*msg)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*MessagePage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contact messages")
	}
	dtos := make([]MessageDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}
	page := pagination.BuildPage(dtos, params.Limit, func(m MessageDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	return &page, nil
}

func (s *service) locale(requested string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested != "" && s.locales.IsSupported(requested) {
		return requested
	}
	return s.locales.Default()
}

func toDTO(m models.ContactMessage) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Locale:    m.Locale,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}
