// Package locale carries the active site, language and currency of a request.
package locale

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
)

// Item is the resolved site, language and currency.
type Item struct {
	SiteID     string
	SiteCode   string
	LanguageID string
	CurrencyID string
}

// Site is a configured shop site with its defaults.
type Site struct {
	SiteID     string
	Code       string
	Label      string
	LanguageID string
	CurrencyID string
	Languages  []string
	Currencies []string
}

// SiteFinder looks up sites by code.
type SiteFinder interface {
	FindSite(ctx context.Context, code string) (Site, error)
}

type contextKey struct{}

// WithLocale stores item in ctx.
func WithLocale(ctx context.Context, item Item) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, item)
}

// FromContext returns the locale stored in ctx.
func FromContext(ctx context.Context) (Item, bool) {
	if ctx == nil {
		return Item{}, false
	}
	item, ok := ctx.Value(contextKey{}).(Item)
	return item, ok
}

// Resolver builds locale items from a site code and optional language and
// currency.
type Resolver struct {
	sites SiteFinder
}

// NewResolver returns a resolver reading sites from finder.
func NewResolver(sites SiteFinder) *Resolver {
	return &Resolver{sites: sites}
}

// Resolve returns the locale for site. Empty language or currency select the
// site defaults; values the site does not offer are rejected.
func (r *Resolver) Resolve(ctx context.Context, siteCode, languageID, currencyID string) (Item, error) {
	if r == nil || r.sites == nil {
		return Item{}, apperrors.Presentation(apperrors.CodeClientConfig, "Locale resolver is not configured")
	}
	site, err := r.sites.FindSite(ctx, strings.TrimSpace(siteCode))
	if err != nil {
		return Item{}, err
	}

	item := Item{SiteID: site.SiteID, SiteCode: site.Code, LanguageID: site.LanguageID, CurrencyID: site.CurrencyID}
	if lang := strings.TrimSpace(languageID); lang != "" {
		if !offered(site.Languages, lang) {
			return Item{}, apperrors.Validation(apperrors.CodeParamsInvalid, "Language %q is not available for site %q", lang, site.Code)
		}
		item.LanguageID = lang
	}
	if currency := strings.TrimSpace(currencyID); currency != "" {
		if !offered(site.Currencies, currency) {
			return Item{}, apperrors.Validation(apperrors.CodeParamsInvalid, "Currency %q is not available for site %q", currency, site.Code)
		}
		item.CurrencyID = currency
	}
	return item, nil
}

// With resolves the locale and returns ctx carrying it.
func (r *Resolver) With(ctx context.Context, siteCode, languageID, currencyID string) (context.Context, error) {
	item, err := r.Resolve(ctx, siteCode, languageID, currencyID)
	if err != nil {
		return ctx, err
	}
	return WithLocale(ctx, item), nil
}

func offered(values []string, value string) bool {
	if len(values) == 0 {
		return true
	}
	for _, candidate := range values {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}
	return false
}
