// Package app hosts the storefront HTTP surface: it builds one client tree
// per request and renders it into a page.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/louisbranch/storefront/internal/platform/config"
	i18ncatalog "github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"github.com/louisbranch/storefront/internal/platform/logging"
	platformotel "github.com/louisbranch/storefront/internal/platform/otel"
	"github.com/louisbranch/storefront/internal/platform/timeouts"
	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/client/basket"
	"github.com/louisbranch/storefront/internal/services/shop/client/catalog"
	"github.com/louisbranch/storefront/internal/services/shop/client/checkout"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/frontend"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultPageCacheTTL is used when Config.PageCacheTTL is zero.
const DefaultPageCacheTTL = 5 * time.Minute

// Config defines the storefront collaborators.
type Config struct {
	HTTPAddr string
	// BaseURL prefixes absolute URLs such as payment callbacks.
	BaseURL string
	// SiteCode selects the shop site for every request.
	SiteCode string
	// SiteConfig holds the client/html/... settings.
	SiteConfig config.Provider
	Renderer   view.Renderer
	Registry   *client.Registry
	Locales    *locale.Resolver
	Baskets    frontend.Baskets
	Orders     frontend.Orders
	Catalog    frontend.Catalog
	Services   domain.ServiceManager
	Messages   *i18ncatalog.Bundle
	Logger     *zap.Logger
	Tracer     trace.Tracer
	// PageCacheTTL bounds how long cacheable pages are reused. Negative
	// disables the page cache.
	PageCacheTTL time.Duration
}

// NewRegistry returns a registry with all storefront clients.
func NewRegistry() *client.Registry {
	registry := client.NewRegistry()
	checkout.Register(registry)
	catalog.Register(registry)
	basket.Register(registry)
	return registry
}

// Handler serves storefront pages.
type Handler struct {
	cfg    Config
	logger *zap.Logger
	tracer trace.Tracer
	pages  *ttlcache.Cache[string, []byte]
	mux    *http.ServeMux
}

// NewHandler validates cfg and builds the storefront routes.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if cfg.Locales == nil {
		return nil, errors.New("locale resolver is required")
	}
	if cfg.Baskets == nil || cfg.Orders == nil || cfg.Catalog == nil || cfg.Services == nil {
		return nil, errors.New("frontend controllers are required")
	}
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.SiteConfig == nil {
		cfg.SiteConfig = config.NewTree()
	}
	if strings.TrimSpace(cfg.SiteCode) == "" {
		cfg.SiteCode = "default"
	}
	h := &Handler{
		cfg:    cfg,
		logger: logging.OrNop(cfg.Logger),
		tracer: cfg.Tracer,
		mux:    http.NewServeMux(),
	}
	if h.tracer == nil {
		h.tracer = platformotel.Tracer("shop/app")
	}
	if cfg.PageCacheTTL >= 0 {
		ttl := cfg.PageCacheTTL
		if ttl == 0 {
			ttl = DefaultPageCacheTTL
		}
		h.pages = ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](ttl),
			ttlcache.WithCapacity[string, []byte](10_000),
		)
	}

	h.mux.Handle("GET /checkout", h.page("checkout/standard", "Checkout"))
	h.mux.Handle("POST /checkout", h.page("checkout/standard", "Checkout"))
	h.mux.Handle("GET /catalog/detail", h.page("catalog/detail", "Product"))
	h.mux.Handle("GET /basket", h.page("basket/standard", "Basket"))
	h.mux.Handle("POST /basket", h.page("basket/standard", "Basket"))
	h.mux.HandleFunc("GET /checkout/confirm", h.confirm)
	h.mux.HandleFunc("POST /checkout/update", h.update)
	h.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/basket", http.StatusSeeOther)
	})
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	chain(h.mux, h.recoverPanic, h.withSession, h.withLocale).ServeHTTP(w, r)
}

// Start runs the page cache expiry loop until ctx is done.
func (h *Handler) Start(ctx context.Context) {
	if h.pages == nil {
		return
	}
	go h.pages.Start()
	go func() {
		<-ctx.Done()
		h.pages.Stop()
	}()
}

func (h *Handler) deps() client.Deps {
	return client.Deps{
		Registry: h.cfg.Registry,
		Config:   h.cfg.SiteConfig,
		Logger:   h.logger,
		Tracer:   h.tracer,
		Baskets:  h.cfg.Baskets,
		Orders:   h.cfg.Orders,
		Catalog:  h.cfg.Catalog,
		Services: h.cfg.Services,
	}
}

// Server hosts the storefront HTTP surface and lifecycle.
type Server struct {
	handler    *Handler
	httpServer *http.Server
}

// NewServer validates cfg and constructs a storefront server.
func NewServer(cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose storefront handler: %w", err)
	}
	return &Server{
		handler: handler,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// ListenAndServe serves HTTP traffic until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("storefront server is nil")
	}
	s.handler.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown storefront http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve storefront http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
