package redis

import "strings"

const keyNamespace = "sf"

// Keyspace builds every key the service writes. The zero value uses the "sf" namespace.
type Keyspace struct {
	Namespace string
}

func (k Keyspace) IdempotencyKey(scope, id string) string {
	return k.join("idempotency", scope, id)
}

func (k Keyspace) RateLimitKey(scope string) string {
	return k.join("rate_limit", scope)
}

// CartKey namespaces a cart storage key such as "cart-storage:<owner>".
func (k Keyspace) CartKey(storageKey string) string {
	return k.join(storageKey)
}

func (k Keyspace) LockKey(name string) string {
	return k.join("lock", name)
}

// AccessSessionKey maps an access token id (jti) to its refresh token.
func (k Keyspace) AccessSessionKey(accessID string) string {
	return k.join("session", "access", accessID)
}

func (k Keyspace) join(parts ...string) string {
	ns := strings.TrimSpace(k.Namespace)
	if ns == "" {
		ns = keyNamespace
	}
	var b strings.Builder
	b.WriteString(ns)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
