package middleware

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type localeResolver interface {
	Resolve(explicit, acceptLanguage string) string
}

// Locale negotiates the response locale from ?locale= and Accept-Language and echoes it in
// Content-Language.
func Locale(resolver localeResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := resolver.Resolve(r.URL.Query().Get("locale"), r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", locale)

			ctx := WithLocale(r.Context(), locale)
			if logg != nil {
				ctx = logg.WithLocale(ctx, locale)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
