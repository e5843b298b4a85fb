package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubLoginService struct {
	resp      *auth.LoginResponse
	err       error
	adminErr  error
	lastEmail string
}

func (s *stubLoginService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastEmail = req.Email
	return s.resp, s.err
}

func (s *stubLoginService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.adminErr != nil {
		return nil, s.adminErr
	}
	return s.resp, s.err
}

type stubRegisterService struct {
	err    error
	called bool
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	s.called = true
	return s.err
}

func loginResponse() *auth.LoginResponse {
	return &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         &users.UserDTO{ID: uuid.New(), Email: "ana@example.com", PreferredLocale: "fr"},
	}
}

func TestAuthLoginSetsTokenHeader(t *testing.T) {
	svc := &stubLoginService{resp: loginResponse()}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"ana@example.com","password":"Secret#123"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get(TokenHeader); got != "access-token" {
		t.Fatalf("expected token header access-token got %q", got)
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", envelope.Data.RefreshToken)
	}
	if envelope.Data.User == nil || envelope.Data.User.PreferredLocale != "fr" {
		t.Fatalf("expected user payload with locale, got %+v", envelope.Data.User)
	}
}

func TestAuthLoginRejectsInvalidBody(t *testing.T) {
	handler := AuthLogin(&stubLoginService{resp: loginResponse()}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"not-an-email"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginPropagatesUnauthorized(t *testing.T) {
	svc := &stubLoginService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"ana@example.com","password":"wrong"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if resp.Header().Get(TokenHeader) != "" {
		t.Fatal("expected no token header on failure")
	}
}

func TestAdminAuthLoginUsesAdminFlow(t *testing.T) {
	svc := &stubLoginService{resp: loginResponse(), adminErr: pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")}
	handler := AdminAuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", bytes.NewBufferString(`{"email":"ana@example.com","password":"Secret#123"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestAuthLoginNilService(t *testing.T) {
	handler := AuthLogin(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestAuthRegisterCreatesAndSignsIn(t *testing.T) {
	reg := &stubRegisterService{}
	login := &stubLoginService{resp: loginResponse()}
	handler := AuthRegister(reg, login, nil)

	body := `{"first_name":"Ana","last_name":"Lopez","email":"ana@example.com","password":"Secret#123","preferred_locale":"fr"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !reg.called {
		t.Fatal("expected register to be called")
	}
	if login.lastEmail != "ana@example.com" {
		t.Fatalf("expected login with registered email, got %q", login.lastEmail)
	}
	if got := resp.Header().Get(TokenHeader); got != "access-token" {
		t.Fatalf("expected token header got %q", got)
	}
}

func TestAuthRegisterConflict(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	login := &stubLoginService{resp: loginResponse()}
	handler := AuthRegister(reg, login, nil)

	body := `{"first_name":"Ana","last_name":"Lopez","email":"ana@example.com","password":"Secret#123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if login.lastEmail != "" {
		t.Fatal("login must not run when registration fails")
	}
}
