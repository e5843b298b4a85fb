package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CartSessionHeader carries the guest cart identity between requests.
const CartSessionHeader = "X-Cart-Session"

// CartOwner resolves who owns the cart: the signed-in user, else the guest session from
// X-Cart-Session. A missing guest session is minted and echoed back. Must run after
// OptionalAuth.
func CartOwner(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := ""
			if userID := UserIDFromContext(r.Context()); userID != "" {
				owner = "user:" + userID
			} else {
				guest := strings.TrimSpace(r.Header.Get(CartSessionHeader))
				if guest == "" {
					guest = uuid.NewString()
				} else if _, err := uuid.Parse(guest); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session").WithDetails(map[string]any{
						"header": CartSessionHeader,
					}))
					return
				}
				w.Header().Set(CartSessionHeader, guest)
				owner = "guest:" + guest
			}

			ctx := WithCartOwner(r.Context(), owner)
			if logg != nil {
				ctx = logg.WithCartOwner(ctx, owner)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
