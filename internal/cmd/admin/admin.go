// Package admin parses admin command configuration and runs the JSON-RPC
// back office surface.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	storefrontcmd "github.com/louisbranch/storefront/internal/cmd/storefront"
	entrypoint "github.com/louisbranch/storefront/internal/platform/cmd"
	"github.com/louisbranch/storefront/internal/services/admin/app"
	"github.com/louisbranch/storefront/internal/services/admin/auth"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"go.uber.org/zap"
)

// Config holds admin command configuration.
type Config struct {
	HTTPAddr    string        `env:"STOREFRONT_ADMIN_HTTP_ADDR"    envDefault:":8081"`
	DBPath      string        `env:"STOREFRONT_DB_PATH"            envDefault:"data/storefront.db"`
	TokenSecret string        `env:"STOREFRONT_ADMIN_TOKEN_SECRET"`
	TokenIssuer string        `env:"STOREFRONT_ADMIN_TOKEN_ISSUER" envDefault:"storefront-admin"`
	TokenTTL    time.Duration `env:"STOREFRONT_ADMIN_TOKEN_TTL"    envDefault:"1h"`
	LogLevel    string        `env:"STOREFRONT_LOG_LEVEL"          envDefault:"info"`

	// IssueToken, when set, prints a token for this subject instead of
	// serving.
	IssueToken string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "admin HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "shop SQLite database path")
	fs.StringVar(&cfg.TokenIssuer, "token-issuer", cfg.TokenIssuer, "expected admin token issuer")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "lifetime of issued tokens")
	fs.StringVar(&cfg.IssueToken, "issue-token", "", "print a token for this subject and exit")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newVerifier(cfg Config) (*auth.Verifier, error) {
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, errors.New("STOREFRONT_ADMIN_TOKEN_SECRET is required")
	}
	return auth.NewVerifier(auth.Config{
		Secret:   []byte(cfg.TokenSecret),
		Issuer:   cfg.TokenIssuer,
		TokenTTL: cfg.TokenTTL,
	})
}

// PrintToken writes a token for cfg.IssueToken to w.
func PrintToken(w io.Writer, cfg Config) error {
	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}
	token, err := verifier.NewToken(cfg.IssueToken)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

// Run serves the admin surface until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}
	options := entrypoint.RunOptions{LogLevel: cfg.LogLevel}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAdmin, options, func(ctx context.Context, logger *zap.Logger) error {
		store, err := storefrontcmd.OpenStore(ctx, cfg.DBPath, false, "")
		if err != nil {
			return fmt.Errorf("open shop store: %w", err)
		}
		defer store.Close()

		server, err := app.NewServer(app.Config{
			HTTPAddr: cfg.HTTPAddr,
			Orders:   store.Orders(),
			Locales:  locale.NewResolver(store),
			Verifier: verifier,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("init admin server: %w", err)
		}
		defer server.Close()

		logger.Info("admin listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve admin: %w", err)
		}
		return nil
	})
}
