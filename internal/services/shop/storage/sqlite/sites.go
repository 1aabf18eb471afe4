package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/id"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
)

// FindSite returns the site with the given code.
func (s *Store) FindSite(ctx context.Context, code string) (locale.Site, error) {
	if err := s.ready(ctx); err != nil {
		return locale.Site{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, code, label, language_id, currency_id, languages, currencies FROM sites WHERE code = ?`,
		strings.TrimSpace(code),
	)
	var site locale.Site
	var languages, currencies string
	if err := row.Scan(&site.SiteID, &site.Code, &site.Label, &site.LanguageID, &site.CurrencyID, &languages, &currencies); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return locale.Site{}, apperrors.DomainError(apperrors.CodeNotFound, "Site \"%s\" not found", code)
		}
		return locale.Site{}, fmt.Errorf("get site: %w", err)
	}
	site.Languages = splitList(languages)
	site.Currencies = splitList(currencies)
	return site, nil
}

// SaveSite inserts or updates a site by code and returns its id.
func (s *Store) SaveSite(ctx context.Context, site locale.Site) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	code := strings.TrimSpace(site.Code)
	if code == "" {
		return "", apperrors.Validation(apperrors.CodeParamsInvalid, "Site code is required")
	}
	if site.SiteID == "" {
		site.SiteID = id.NewID()
	}
	now := toMillis(time.Now())
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sites (id, code, label, language_id, currency_id, languages, currencies, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		   label = excluded.label,
		   language_id = excluded.language_id,
		   currency_id = excluded.currency_id,
		   languages = excluded.languages,
		   currencies = excluded.currencies,
		   updated_at = excluded.updated_at`,
		site.SiteID, code, site.Label, site.LanguageID, site.CurrencyID,
		strings.Join(site.Languages, ","), strings.Join(site.Currencies, ","), now, now,
	)
	if err != nil {
		return "", storageError("save site", err)
	}
	stored, err := s.FindSite(ctx, code)
	if err != nil {
		return "", err
	}
	return stored.SiteID, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var _ locale.SiteFinder = (*Store)(nil)
