// Package i18n translates storefront messages and resolves request languages.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the shopper's language preference.
	LangCookieName = "sf_lang"
)

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.MustParse("de-DE"),
}

var tagMatcher = language.NewMatcher(supportedTags)

// Translator translates messages within named domains ("client",
// "frontend", "mshop", "mshop/code") for one language.
type Translator interface {
	DT(domain, msg string, args ...any) string
	Locale() string
}

// CatalogTranslator resolves messages from a catalog bundle and formats
// arguments with a locale-aware printer.
type CatalogTranslator struct {
	bundle  *catalog.Bundle
	tag     language.Tag
	printer *message.Printer
}

// NewTranslator returns a translator for tag backed by bundle. A nil bundle
// uses the embedded catalogs.
func NewTranslator(bundle *catalog.Bundle, tag language.Tag) *CatalogTranslator {
	if bundle == nil {
		bundle = catalog.Default()
	}
	return &CatalogTranslator{bundle: bundle, tag: tag, printer: message.NewPrinter(tag)}
}

// DT returns the translation of msg in domain, formatted with args. Unknown
// messages are returned untranslated.
func (t *CatalogTranslator) DT(domain, msg string, args ...any) string {
	translated := msg
	if t != nil && t.bundle != nil {
		if value, ok := t.bundle.Message(t.Locale(), catalog.NamespaceForDomain(domain), msg); ok {
			translated = value
		}
	}
	if len(args) == 0 {
		return translated
	}
	if t == nil || t.printer == nil {
		return message.NewPrinter(language.AmericanEnglish).Sprintf(translated, args...)
	}
	return t.printer.Sprintf(translated, args...)
}

// Locale returns the catalog locale used for lookups.
func (t *CatalogTranslator) Locale() string {
	if t == nil {
		return catalog.BaseLocale
	}
	return t.tag.String()
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.AmericanEnglish
}

// ParseTag matches value against the supported tags.
func ParseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Und, false
	}
	return MatchTags([]language.Tag{parsed})
}

// MatchTags returns the best supported tag for the requested tags.
func MatchTags(tags []language.Tag) (language.Tag, bool) {
	_, index, confidence := tagMatcher.Match(tags...)
	if confidence == language.No {
		return Default(), false
	}
	return supportedTags[index], true
}

// ResolveTag determines the best language tag for the request.
// The bool indicates whether the lang query param should be persisted as a cookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(LangParam)); langValue != "" {
		if tag, ok := ParseTag(langValue); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			tag, _ := MatchTags(tags)
			return tag, false
		}
	}

	return Default(), false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
