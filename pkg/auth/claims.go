package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// AccessTokenPayload is what the caller supplies when minting.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	Locale string
	// JTI doubles as the refresh-session key; a fresh one is generated when empty.
	JTI string
}

type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	Locale string         `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

// Validate is run by the jwt parser after the registered claims check out.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("user id is required")
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", c.Role)
	}
	return nil
}
