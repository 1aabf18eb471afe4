// Package app hosts the admin HTTP surface: authenticated JSON-RPC access
// to the back office command controllers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	i18ncatalog "github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"github.com/louisbranch/storefront/internal/platform/logging"
	"github.com/louisbranch/storefront/internal/platform/timeouts"
	"github.com/louisbranch/storefront/internal/services/admin/auth"
	"github.com/louisbranch/storefront/internal/services/admin/extjs"
	"github.com/louisbranch/storefront/internal/services/admin/transport/jsonrpc"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"go.uber.org/zap"
)

// Config defines the admin collaborators.
type Config struct {
	HTTPAddr string
	Orders   domain.OrderManager
	Locales  extjs.LocaleResolver
	Verifier *auth.Verifier
	Messages *i18ncatalog.Bundle
	Logger   *zap.Logger
}

// NewHandler composes the command controllers behind the JSON-RPC endpoint.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	orderBase, err := extjs.NewOrderBaseController(cfg.Orders, cfg.Locales)
	if err != nil {
		return nil, fmt.Errorf("order base controller: %w", err)
	}
	logger := logging.OrNop(cfg.Logger)
	rpc := jsonrpc.NewHandler(extjs.NewDispatcher(orderBase), cfg.Messages, logger)

	mux := http.NewServeMux()
	mux.Handle(jsonrpc.Path, cfg.Verifier.Middleware(withTimeout(rpc)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux, nil
}

func withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.AdminCommand)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Server hosts the admin HTTP surface and lifecycle.
type Server struct {
	httpServer *http.Server
}

// NewServer validates cfg and constructs an admin server.
func NewServer(cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose admin handler: %w", err)
	}
	return &Server{httpServer: &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}}, nil
}

// ListenAndServe serves HTTP traffic until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("admin server is nil")
	}
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
			return fmt.Errorf("shutdown admin http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve admin http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
