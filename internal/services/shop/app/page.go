package app

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/jellydator/ttlcache/v3"
	"github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/platform/timeouts"
	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/templates"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CacheHeader reports whether a page was served from the page cache.
const CacheHeader = "X-Page-Cache"

// page renders the client tree at path.
func (h *Handler) page(path, title string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.PageRender)
		defer cancel()
		ctx, span := h.tracer.Start(ctx, "storefront.page", trace.WithAttributes(attribute.String("client.path", path)))
		defer span.End()

		tag := tagFromContext(ctx)
		key := pageCacheKey(r, tag)
		if r.Method == http.MethodGet && h.pages != nil {
			if item := h.pages.Get(key); item != nil {
				w.Header().Set(CacheHeader, "hit")
				writeHTML(w, http.StatusOK, item.Value())
				return
			}
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		translator := i18n.NewTranslator(h.cfg.Messages, tag)
		v := view.New(view.Options{
			Config:     h.cfg.SiteConfig,
			Params:     r.Form,
			URLs:       view.Routes{BaseURL: h.cfg.BaseURL},
			Renderer:   h.cfg.Renderer,
			Translator: translator,
		})
		html, cacheable, err := h.renderTree(ctx, path, v)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render page")
			h.logger.Error("render page", zap.String("client", path), zap.Error(err), zap.Stack("stack"))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		page := templates.Page(templates.PageOptions{
			Title:  translator.DT("client", title),
			Lang:   tag.String(),
			Header: html.header,
			Body:   html.body,
		})
		if err := page.Render(ctx, &buf); err != nil {
			h.logger.Error("render layout", zap.String("client", path), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if r.Method == http.MethodGet && h.pages != nil && cacheable && !hasErrors(v) {
			h.pages.Set(key, buf.Bytes(), ttlcache.DefaultTTL)
			w.Header().Set(CacheHeader, "miss")
		}
		writeHTML(w, http.StatusOK, buf.Bytes())
	})
}

type renderedTree struct {
	header string
	body   string
}

// renderTree processes and renders a fresh client tree.
func (h *Handler) renderTree(ctx context.Context, path string, v *view.View) (renderedTree, bool, error) {
	tree, err := client.New(h.deps(), path, "")
	if err != nil {
		return renderedTree{}, false, err
	}
	if err := tree.Process(ctx, v); err != nil {
		return renderedTree{}, false, err
	}
	header, err := tree.Header(ctx, v)
	if err != nil {
		return renderedTree{}, false, err
	}
	body, err := tree.Body(ctx, v)
	if err != nil {
		return renderedTree{}, false, err
	}
	cacheable := tree.Cacheable(client.SectionHeader) && tree.Cacheable(client.SectionBody)
	return renderedTree{header: header, body: body}, cacheable, nil
}

// hasErrors reports whether any client added to an error list.
func hasErrors(v *view.View) bool {
	for _, key := range v.Keys() {
		if strings.HasSuffix(key, "ErrorList") && len(view.Value[[]string](v, key, nil)) > 0 {
			return true
		}
	}
	return false
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	tag := tagFromContext(r.Context())
	translator := i18n.NewTranslator(h.cfg.Messages, tag)
	body := templates.Message(
		translator.DT("client", "Order confirmed"),
		translator.DT("client", "We received your order and will send a confirmation by e-mail."),
	)
	var content bytes.Buffer
	if err := body.Render(r.Context(), &content); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	page := templates.Page(templates.PageOptions{
		Title: translator.DT("client", "Order confirmed"),
		Lang:  tag.String(),
		Body:  content.String(),
	})
	if err := page.Render(r.Context(), &buf); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// update accepts payment status notifications from providers.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.logger.Info("payment update received",
		zap.String("orderid", r.Form.Get("orderid")), zap.String("status", r.Form.Get("status")))
	w.WriteHeader(http.StatusNoContent)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
