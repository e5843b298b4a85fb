package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// TokenHeader mirrors the access token for clients that read headers.
const TokenHeader = "X-Storefront-Token"

type loginService interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc loginService, logg *logger.Logger) http.HandlerFunc {
	return login(svc, logg, func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
		return svc.Login(ctx, req)
	})
}

// AdminAuthLogin only admits admin accounts.
func AdminAuthLogin(svc loginService, logg *logger.Logger) http.HandlerFunc {
	return login(svc, logg, func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
		return svc.AdminLogin(ctx, req)
	})
}

func login(svc loginService, logg *logger.Logger, do func(context.Context, auth.LoginRequest) (*auth.LoginResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := do(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(TokenHeader, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}
