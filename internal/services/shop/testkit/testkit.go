// Package testkit builds seeded storefront fixtures for client and HTTP
// tests.
package testkit

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/louisbranch/storefront/internal/platform/config"
	"github.com/louisbranch/storefront/internal/platform/requestctx"
	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/frontend"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"github.com/louisbranch/storefront/internal/services/shop/service"
	"github.com/louisbranch/storefront/internal/services/shop/storage/sqlite"
	"github.com/louisbranch/storefront/internal/services/shop/templates"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// GatewayURL is the redirect.url of the seeded "gateway" payment option.
const GatewayURL = "https://pay.example.test/start"

// BaseURL prefixes absolute shop URLs.
const BaseURL = "https://shop.example.test"

// Fixture is a seeded shop with a session and locale in Ctx.
type Fixture struct {
	Ctx      context.Context
	Store    *sqlite.Store
	Sessions *frontend.SessionStore
	Baskets  *frontend.BasketController
	Orders   *frontend.OrderController
	Catalog  *frontend.CatalogController
	Services *sqlite.ServiceManager
	Registry *client.Registry
	Config   *config.Tree
	Engine   *templates.Engine
	Logger   *zap.Logger
	Logs     *observer.ObservedLogs
}

// New returns a fixture whose registry holds the clients added by register.
func New(t testing.TB, register ...func(*client.Registry)) *Fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.SeedDemo(ctx, GatewayURL); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	loc, err := locale.NewResolver(store).Resolve(ctx, sqlite.DemoSiteCode, "", "")
	if err != nil {
		t.Fatalf("resolve locale: %v", err)
	}

	registry := client.NewRegistry()
	for _, fn := range register {
		fn(registry)
	}
	core, logs := observer.New(zap.ErrorLevel)

	sessions := frontend.NewSessionStore()
	services := store.Services(service.NewFactory(nil))
	f := &Fixture{
		Ctx:      requestctx.WithSessionID(locale.WithLocale(ctx, loc), "session-1"),
		Store:    store,
		Sessions: sessions,
		Baskets:  frontend.NewBasketController(sessions, store.Products(), services),
		Orders:   frontend.NewOrderController(sessions, store.Orders(), store.Products()),
		Catalog:  frontend.NewCatalogController(store.Products(), store.Attributes(), services),
		Services: services,
		Registry: registry,
		Config:   config.NewTree(),
		Engine:   templates.NewEngine(),
		Logger:   zap.New(core),
		Logs:     logs,
	}
	return f
}

// Deps returns the client collaborators backed by the fixture.
func (f *Fixture) Deps() client.Deps {
	return client.Deps{
		Registry: f.Registry,
		Config:   f.Config,
		Logger:   f.Logger,
		Baskets:  f.Baskets,
		Orders:   f.Orders,
		Catalog:  f.Catalog,
		Services: f.Services,
	}
}

// View returns a fresh request view with params.
func (f *Fixture) View(params url.Values) *view.View {
	return view.New(view.Options{
		Config:   f.Config,
		Params:   params,
		URLs:     view.Routes{BaseURL: BaseURL},
		Renderer: f.Engine,
	})
}

// Client creates the client at path for a new request.
func (f *Fixture) Client(t testing.TB, path string) client.Client {
	t.Helper()
	c, err := client.New(f.Deps(), path, "")
	if err != nil {
		t.Fatalf("create client %s: %v", path, err)
	}
	return c
}

// Product returns the seeded product with code.
func (f *Fixture) Product(t testing.TB, code string) *domain.ProductItem {
	t.Helper()
	products := f.Store.Products()
	search := products.CreateSearch()
	search.SetConditions(search.Compare(criteria.OpEqual, "product.code", code))
	items, _, err := products.SearchItems(f.Ctx, search)
	if err != nil || len(items) != 1 {
		t.Fatalf("find product %s: %v (%d items)", code, err, len(items))
	}
	return items[0]
}

// FillBasket adds the demo mug, a billing address, standard delivery and
// the payment option with code payment to the session basket.
func (f *Fixture) FillBasket(t testing.TB, payment string) {
	t.Helper()
	mug := f.Product(t, "demo-mug")
	if err := f.Baskets.AddProduct(f.Ctx, mug.ProductID, 1, nil); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if err := f.Baskets.SetAddress(f.Ctx, domain.Address{
		Type: domain.AddressPayment, FirstName: "Ada", LastName: "Lovelace",
		Street: "1 Main St", City: "London", Email: "ada@example.test",
	}); err != nil {
		t.Fatalf("set address: %v", err)
	}
	if err := f.Baskets.SetService(f.Ctx, domain.ServiceDelivery, "standard"); err != nil {
		t.Fatalf("set delivery: %v", err)
	}
	if payment != "" {
		if err := f.Baskets.SetService(f.Ctx, domain.ServicePayment, payment); err != nil {
			t.Fatalf("set payment: %v", err)
		}
	}
}
