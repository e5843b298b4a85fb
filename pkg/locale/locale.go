package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Resolver negotiates the response locale from an explicit choice or Accept-Language.
type Resolver struct {
	def     string
	names   []string
	matcher language.Matcher
}

// NewResolver builds a resolver whose first candidate is the default locale.
func NewResolver(def string, supported []string) (*Resolver, error) {
	def = strings.ToLower(strings.TrimSpace(def))
	if def == "" {
		return nil, fmt.Errorf("default locale is required")
	}
	defTag, err := language.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", def, err)
	}

	names := []string{def}
	tags := []language.Tag{defTag}
	for _, raw := range supported {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || name == def {
			continue
		}
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse supported locale %q: %w", raw, err)
		}
		names = append(names, name)
		tags = append(tags, tag)
	}

	return &Resolver{
		def:     def,
		names:   names,
		matcher: language.NewMatcher(tags),
	}, nil
}

func (r *Resolver) Default() string {
	return r.def
}

func (r *Resolver) Supported() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// IsSupported reports whether locale is one of the configured names.
func (r *Resolver) IsSupported(locale string) bool {
	locale = strings.ToLower(strings.TrimSpace(locale))
	for _, name := range r.names {
		if name == locale {
			return true
		}
	}
	return false
}

// Resolve prefers explicit (query param or profile) and falls back to the Accept-Language
// header, then the default. The result is always a configured locale name.
func (r *Resolver) Resolve(explicit, acceptLanguage string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			if name, ok := r.match(tag); ok {
				return name
			}
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			if name, ok := r.match(tags...); ok {
				return name
			}
		}
	}
	return r.def
}

func (r *Resolver) match(tags ...language.Tag) (string, bool) {
	_, idx, confidence := r.matcher.Match(tags...)
	if confidence == language.No || idx < 0 || idx >= len(r.names) {
		return "", false
	}
	return r.names[idx], true
}

// IsRTL reports whether the locale's script is written right to left.
func IsRTL(locale string) bool {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return false
	}
	script, _ := tag.Script()
	switch script.String() {
	case "Arab", "Hebr", "Thaa", "Syrc", "Nkoo", "Adlm":
		return true
	}
	return false
}
