// Package storefront parses storefront command configuration and runs the
// shop HTTP surface.
package storefront

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/storefront/internal/platform/cmd"
	"github.com/louisbranch/storefront/internal/platform/config"
	"github.com/louisbranch/storefront/internal/services/shop/app"
	"github.com/louisbranch/storefront/internal/services/shop/frontend"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"github.com/louisbranch/storefront/internal/services/shop/service"
	"github.com/louisbranch/storefront/internal/services/shop/storage/sqlite"
	"github.com/louisbranch/storefront/internal/services/shop/templates"
	"go.uber.org/zap"
)

//go:embed site.yaml
var defaultSiteConfig []byte

// Config holds storefront command configuration.
type Config struct {
	HTTPAddr     string        `env:"STOREFRONT_HTTP_ADDR"       envDefault:":8080"`
	DBPath       string        `env:"STOREFRONT_DB_PATH"         envDefault:"data/storefront.db"`
	SiteConfig   string        `env:"STOREFRONT_SITE_CONFIG"`
	SiteCode     string        `env:"STOREFRONT_SITE_CODE"       envDefault:"default"`
	BaseURL      string        `env:"STOREFRONT_BASE_URL"        envDefault:"http://localhost:8080"`
	PageCacheTTL time.Duration `env:"STOREFRONT_PAGE_CACHE_TTL"  envDefault:"5m"`
	SeedDemo     bool          `env:"STOREFRONT_SEED_DEMO"       envDefault:"true"`
	GatewayURL   string        `env:"STOREFRONT_GATEWAY_URL"     envDefault:"https://pay.example.test/start"`
	LogLevel     string        `env:"STOREFRONT_LOG_LEVEL"       envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "storefront HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "shop SQLite database path")
	fs.StringVar(&cfg.SiteConfig, "site-config", cfg.SiteConfig, "site configuration YAML merged over the defaults")
	fs.StringVar(&cfg.SiteCode, "site", cfg.SiteCode, "site code served by this process")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "public base URL for absolute links")
	fs.DurationVar(&cfg.PageCacheTTL, "page-cache-ttl", cfg.PageCacheTTL, "page cache lifetime, negative disables")
	fs.BoolVar(&cfg.SeedDemo, "seed-demo", cfg.SeedDemo, "seed the demo site when it has no products")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadSiteConfig returns the embedded defaults merged with the YAML file at
// path, when set.
func LoadSiteConfig(path string) (*config.Tree, error) {
	tree, err := config.ParseTree(defaultSiteConfig)
	if err != nil {
		return nil, fmt.Errorf("parse default site config: %w", err)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return tree, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site config: %w", err)
	}
	defer file.Close()
	override, err := config.ReadTree(file)
	if err != nil {
		return nil, fmt.Errorf("load site config %s: %w", path, err)
	}
	return tree.Merge(override), nil
}

// OpenStore opens the shop database, creating its directory, and seeds the
// demo site when requested.
func OpenStore(ctx context.Context, path string, seed bool, gatewayURL string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if seed {
		if err := store.SeedDemo(ctx, gatewayURL); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

// Run serves the storefront until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	options := entrypoint.RunOptions{LogLevel: cfg.LogLevel}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStorefront, options, func(ctx context.Context, logger *zap.Logger) error {
		siteConfig, err := LoadSiteConfig(cfg.SiteConfig)
		if err != nil {
			return err
		}
		store, err := OpenStore(ctx, cfg.DBPath, cfg.SeedDemo, cfg.GatewayURL)
		if err != nil {
			return fmt.Errorf("open shop store: %w", err)
		}
		defer store.Close()

		sessions := frontend.NewSessionStore()
		services := store.Services(service.NewFactory(nil))
		server, err := app.NewServer(app.Config{
			HTTPAddr:     cfg.HTTPAddr,
			BaseURL:      cfg.BaseURL,
			SiteCode:     cfg.SiteCode,
			SiteConfig:   siteConfig,
			Renderer:     templates.NewEngine(),
			Registry:     app.NewRegistry(),
			Locales:      locale.NewResolver(store),
			Baskets:      frontend.NewBasketController(sessions, store.Products(), services),
			Orders:       frontend.NewOrderController(sessions, store.Orders(), store.Products()),
			Catalog:      frontend.NewCatalogController(store.Products(), store.Attributes(), services),
			Services:     services,
			Logger:       logger,
			PageCacheTTL: cfg.PageCacheTTL,
		})
		if err != nil {
			return fmt.Errorf("init storefront server: %w", err)
		}
		defer server.Close()

		logger.Info("storefront listening", zap.String("addr", cfg.HTTPAddr), zap.String("site", cfg.SiteCode))
		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve storefront: %w", err)
		}
		return nil
	})
}
