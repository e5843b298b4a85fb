package middleware

import "context"

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxLocale    contextKey = "locale"
	ctxCartOwner contextKey = "cart_owner"
)

func UserIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

// LocaleFromContext returns the negotiated locale, empty when Locale did not run.
func LocaleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxLocale)
}

// CartOwnerFromContext returns the user id or guest session that owns the cart.
func CartOwnerFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxCartOwner)
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	return withString(ctx, ctxRole, role)
}

// WithLocale injects the negotiated locale into the context.
func WithLocale(ctx context.Context, locale string) context.Context {
	return withString(ctx, ctxLocale, locale)
}

// WithCartOwner injects the cart owner into the context.
func WithCartOwner(ctx context.Context, owner string) context.Context {
	return withString(ctx, ctxCartOwner, owner)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}
