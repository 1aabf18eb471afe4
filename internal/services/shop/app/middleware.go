package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/platform/id"
	"github.com/louisbranch/storefront/internal/platform/requestctx"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// SessionCookieName stores the shopper session id.
const SessionCookieName = "sf_session"

type middleware func(http.Handler) http.Handler

// chain wraps h so the first middleware runs outermost.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func (h *Handler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("storefront panic",
					zap.String("path", r.URL.Path), zap.Any("panic", rec), zap.Stack("stack"))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withSession assigns a session id cookie to new shoppers.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			sessionID = strings.TrimSpace(cookie.Value)
		}
		if !id.Valid(sessionID) {
			sessionID = id.NewID()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithSessionID(r.Context(), sessionID)))
	})
}

type tagContextKey struct{}

// withLocale resolves the shopper language and the shop locale.
func (h *Handler) withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag, persist := i18n.ResolveTag(r)
		if persist {
			i18n.SetLanguageCookie(w, tag)
		}
		base, _ := tag.Base()
		loc, err := h.cfg.Locales.Resolve(r.Context(), h.cfg.SiteCode, base.String(), "")
		if err != nil {
			// Fall back to the site defaults for languages the site does not offer.
			loc, err = h.cfg.Locales.Resolve(r.Context(), h.cfg.SiteCode, "", "")
		}
		if err != nil {
			h.logger.Error("resolve locale", zap.String("site", h.cfg.SiteCode), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		ctx := locale.WithLocale(r.Context(), loc)
		ctx = context.WithValue(ctx, tagContextKey{}, tag)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tagFromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(tagContextKey{}).(language.Tag); ok {
		return tag
	}
	return i18n.Default()
}

func pageCacheKey(r *http.Request, tag language.Tag) string {
	return fmt.Sprintf("%s|%s", tag, r.URL.RequestURI())
}
