package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestFindSiteAndLocaleResolution(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.SaveSite(ctx, locale.Site{Code: "shop", Label: "Shop", LanguageID: "en", CurrencyID: "EUR", Languages: []string{"en", "de"}}); err != nil {
		t.Fatalf("save site: %v", err)
	}

	item, err := locale.NewResolver(store).Resolve(ctx, "shop", "de", "")
	if err != nil {
		t.Fatalf("resolve locale: %v", err)
	}
	if item.LanguageID != "de" || item.CurrencyID != "EUR" || item.SiteID == "" {
		t.Fatalf("locale = %+v", item)
	}
	if _, err := store.FindSite(ctx, "missing"); apperrors.KindOf(err) != apperrors.KindDomain {
		t.Fatalf("expected domain not found error, got %v", err)
	}
}

func TestOrderBaseSaveSearchRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := siteContext(t, store)
	manager := store.OrderBases()

	first := manager.CreateItem()
	first.Comment = "first"
	first.CustomerID = "c1"
	if err := manager.SaveItem(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := manager.CreateItem()
	second.Comment = "second"
	if err := manager.SaveItem(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first.BaseID == "" || first.SiteID == "" || first.CurrencyID != "EUR" {
		t.Fatalf("saved item = %+v", first)
	}

	search := manager.CreateSearch()
	search.SetConditions(search.Compare(criteria.OpEqual, "order.base.id", []string{second.BaseID, first.BaseID}))
	search.SetSlice(0, 2)
	items, total, err := manager.SearchItems(ctx, search)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("search returned %d items, total %d", len(items), total)
	}
	if items[0].Comment != "first" || items[1].Comment != "second" {
		t.Fatalf("unexpected order: %q, %q", items[0].Comment, items[1].Comment)
	}

	update := manager.CreateItem()
	update.BaseID = first.BaseID
	update.Comment = "updated"
	if err := manager.SaveItem(ctx, update); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := manager.GetItem(ctx, first.BaseID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Comment != "updated" || got.CustomerID != "" {
		t.Fatalf("updated item = %+v", got)
	}

	missing := manager.CreateItem()
	missing.BaseID = "nope"
	if err := manager.SaveItem(ctx, missing); apperrors.KindOf(err) != apperrors.KindDomain {
		t.Fatalf("expected not found domain error, got %v", err)
	}

	if err := manager.DeleteItems(ctx, []string{first.BaseID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := manager.GetItem(ctx, first.BaseID); err == nil {
		t.Fatal("expected deleted item to be missing")
	}
}

func TestOrderBaseRequiresLocale(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.OrderBases().SaveItem(context.Background(), &domain.OrderBaseItem{})
	if e, ok := apperrors.As(err); !ok || e.Code != apperrors.CodeLocaleMissing {
		t.Fatalf("expected locale error, got %v", err)
	}
}

func TestStoreAndLoadBasket(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := siteContext(t, store)
	bases := store.OrderBases()

	basket := domain.NewBasket()
	basket.Comment = "leave at door"
	basket.AddProduct(domain.OrderProduct{
		ProductID: "p1", Code: "shirt", Name: "Shirt", Quantity: 2, Price: 1000,
		Attributes: []domain.OrderProductAttribute{
			{AttributeID: "a1", Type: "color", Code: "red", Name: "Red"},
			{AttributeID: "a2", Type: "size", Code: "m", Name: "M"},
		},
	})
	basket.SetAddress(domain.Address{Type: domain.AddressPayment, FirstName: "Ada", City: "Berlin"})
	basket.SetAddress(domain.Address{Type: domain.AddressDelivery, FirstName: "Ada", City: "Hamburg"})
	basket.SetService(domain.OrderService{Type: domain.ServicePayment, Code: "prepay", Name: "Prepayment"})

	base, err := bases.Store(ctx, basket)
	if err != nil {
		t.Fatalf("store basket: %v", err)
	}
	if base.Price != 2000 {
		t.Fatalf("price = %d, want 2000", base.Price)
	}

	loaded, err := bases.Load(ctx, base.BaseID)
	if err != nil {
		t.Fatalf("load basket: %v", err)
	}
	loaded.LanguageID, loaded.CurrencyID = "", ""
	if diff := cmp.Diff(basket, loaded); diff != "" {
		t.Fatalf("basket mismatch (-want +got):\n%s", diff)
	}

	if _, err := bases.Store(ctx, domain.NewBasket()); apperrors.KindOf(err) != apperrors.KindApplication {
		t.Fatalf("expected empty basket application error, got %v", err)
	}
}

func TestOrderManagerSubManager(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := siteContext(t, store)
	orders := store.Orders()

	bases, err := orders.SubManager("base")
	if err != nil {
		t.Fatalf("sub manager: %v", err)
	}
	if _, err := orders.SubManager("status"); apperrors.KindOf(err) != apperrors.KindDomain {
		t.Fatalf("expected unknown manager error, got %v", err)
	}

	basket := domain.NewBasket()
	basket.AddProduct(domain.OrderProduct{ProductID: "p1", Quantity: 1, Price: 500})
	base, err := bases.Store(ctx, basket)
	if err != nil {
		t.Fatalf("store basket: %v", err)
	}
	order := orders.CreateItem()
	order.BaseID = base.BaseID
	if err := orders.SaveItem(ctx, order); err != nil {
		t.Fatalf("save order: %v", err)
	}
	order.PaymentStatus = domain.PayStatusPending
	if err := orders.SaveItem(ctx, order); err != nil {
		t.Fatalf("update order: %v", err)
	}
	got, err := orders.GetItem(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.BaseID != base.BaseID || got.PaymentStatus != domain.PayStatusPending || got.Type != "web" {
		t.Fatalf("order = %+v", got)
	}
}

type stubProvider struct{ code string }

func (p stubProvider) Code() string              { return p.code }
func (p stubProvider) InjectConfig(string, string) {}
func (p stubProvider) Process(context.Context, *domain.OrderItem) (*domain.Form, error) {
	return nil, domain.ErrNothingToProcess
}

func TestSeedDemoProductsAndServices(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.SeedDemo(ctx, "https://pay.example.test"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.SeedDemo(ctx, "https://pay.example.test"); err != nil {
		t.Fatalf("re-seed should be idempotent: %v", err)
	}
	loc, err := locale.NewResolver(store).Resolve(ctx, DemoSiteCode, "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	ctx = locale.WithLocale(ctx, loc)

	products := store.Products()
	search := products.CreateSearch()
	search.SetConditions(search.Compare(criteria.OpEqual, "product.code", "demo-shirt"))
	items, total, err := products.SearchItems(ctx, search)
	if err != nil {
		t.Fatalf("search products: %v", err)
	}
	if total != 1 || len(items[0].RefIDs(domain.ListConfig)) != 4 || len(items[0].RefIDs(domain.ListHidden)) != 1 {
		t.Fatalf("seeded product = %+v (total %d)", items, total)
	}

	var created domain.ServiceItem
	services := store.Services(func(item domain.ServiceItem) (domain.ServiceProvider, error) {
		created = item
		return stubProvider{code: item.Code}, nil
	})
	provider, err := services.Provider(ctx, domain.ServicePayment, "gateway")
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	if provider.Code() != "gateway" || created.Config["redirect.url"] != "https://pay.example.test" {
		t.Fatalf("provider %q created from %+v", provider.Code(), created)
	}
	if _, err := services.Provider(ctx, domain.ServicePayment, "missing"); apperrors.KindOf(err) != apperrors.KindDomain {
		t.Fatalf("expected not found, got %v", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func siteContext(t *testing.T, store *Store) context.Context {
	t.Helper()
	ctx := context.Background()
	siteID, err := store.SaveSite(ctx, locale.Site{Code: "test", Label: "Test", LanguageID: "en", CurrencyID: "EUR"})
	if err != nil {
		t.Fatalf("save site: %v", err)
	}
	return locale.WithLocale(ctx, locale.Item{SiteID: siteID, SiteCode: "test", LanguageID: "en", CurrencyID: "EUR"})
}
