package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"github.com/louisbranch/storefront/internal/services/shop/testkit"
)

type shopper struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newShopper(t *testing.T) (*shopper, *testkit.Fixture) {
	t.Helper()
	f := testkit.New(t)
	h, err := NewHandler(Config{
		BaseURL:    testkit.BaseURL,
		SiteConfig: f.Config,
		Renderer:   f.Engine,
		Locales:    locale.NewResolver(f.Store),
		Baskets:    f.Baskets,
		Orders:     f.Orders,
		Catalog:    f.Catalog,
		Services:   f.Services,
		Logger:     f.Logger,
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return &shopper{t: t, handler: h}, f
}

func (s *shopper) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, cookie := range s.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		s.setCookie(cookie)
	}
	return rec
}

func (s *shopper) setCookie(cookie *http.Cookie) {
	for i, existing := range s.cookies {
		if existing.Name == cookie.Name {
			s.cookies[i] = cookie
			return
		}
	}
	s.cookies = append(s.cookies, cookie)
}

func assertContains(t *testing.T, rec *httptest.ResponseRecorder, wants ...string) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %q", rec.Code, http.StatusOK, rec.Body.String())
	}
	for _, want := range wants {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("expected %q in %q", want, rec.Body.String())
		}
	}
}

func TestCatalogDetailIsServedFromPageCache(t *testing.T) {
	t.Parallel()

	s, f := newShopper(t)
	target := "/catalog/detail?d_prodid=" + f.Product(t, "demo-shirt").ProductID

	first := s.do(http.MethodGet, target, nil)
	assertContains(t, first, "<h1>Demo shirt</h1>", "<title>Product | Storefront</title>")
	if got := first.Header().Get(CacheHeader); got != "miss" {
		t.Fatalf("first %s = %q, want miss", CacheHeader, got)
	}
	if got := first.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("Content-Type = %q", got)
	}

	second := s.do(http.MethodGet, target, nil)
	if got := second.Header().Get(CacheHeader); got != "hit" {
		t.Fatalf("second %s = %q, want hit", CacheHeader, got)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatal("cached page differs from rendered page")
	}
}

func TestPagesWithErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	s, _ := newShopper(t)
	for range 2 {
		rec := s.do(http.MethodGet, "/catalog/detail", nil)
		assertContains(t, rec, "Product ID is missing")
		if got := rec.Header().Get(CacheHeader); got != "" {
			t.Fatalf("%s = %q, want unset", CacheHeader, got)
		}
	}
}

func TestBasketIsNotCachedAndKeepsSession(t *testing.T) {
	t.Parallel()

	s, f := newShopper(t)
	mug := f.Product(t, "demo-mug")

	rec := s.do(http.MethodPost, "/basket", url.Values{"b_action": {"add"}, "b_prodid": {mug.ProductID}})
	assertContains(t, rec, `<span class="name">Demo mug</span>`)
	if len(s.cookies) == 0 || s.cookies[0].Name != SessionCookieName {
		t.Fatalf("cookies = %v, want session cookie", s.cookies)
	}

	rec = s.do(http.MethodGet, "/basket", nil)
	assertContains(t, rec, `<span class="name">Demo mug</span>`)
	if got := rec.Header().Get(CacheHeader); got != "" {
		t.Fatalf("%s = %q, want unset", CacheHeader, got)
	}

	other := &shopper{t: t, handler: s.handler}
	assertContains(t, other.do(http.MethodGet, "/basket", nil), "Your basket is empty")
}

func TestCheckoutPlacesOrder(t *testing.T) {
	t.Parallel()

	s, f := newShopper(t)
	mug := f.Product(t, "demo-mug")

	s.do(http.MethodPost, "/basket", url.Values{"b_action": {"add"}, "b_prodid": {mug.ProductID}})
	assertContains(t, s.do(http.MethodPost, "/checkout?c-step=delivery", url.Values{
		"ca_payment_firstname": {"Ada"},
		"ca_payment_lastname":  {"Lovelace"},
		"ca_payment_street":    {"1 Main St"},
		"ca_payment_city":      {"London"},
		"ca_payment_email":     {"ada@example.test"},
	}), "checkout-standard-delivery")
	assertContains(t, s.do(http.MethodPost, "/checkout?c-step=payment", url.Values{"c_delivery": {"standard"}}), "checkout-standard-payment")
	assertContains(t, s.do(http.MethodPost, "/checkout?c-step=summary", url.Values{"c_payment": {"gateway"}}), "Payment gateway")
	assertContains(t, s.do(http.MethodPost, "/checkout?c-step=order", url.Values{"cs_comment": {"Leave at the door"}}), "Place order")

	rec := s.do(http.MethodPost, "/checkout?c-step=order", url.Values{"cs_order": {"1"}})
	assertContains(t, rec,
		"Thank you for your order",
		`<form method="POST" action="`+testkit.GatewayURL+`">`,
		`name="url-success" value="`+testkit.BaseURL+`/checkout/confirm"`,
	)
	if strings.Contains(rec.Body.String(), "error-list") {
		t.Fatalf("unexpected errors in %q", rec.Body.String())
	}

	if got := f.Product(t, "demo-mug").Stock; got != mug.Stock-1 {
		t.Fatalf("stock = %d, want %d", got, mug.Stock-1)
	}
}

func TestLanguageParamTranslatesAndPersists(t *testing.T) {
	t.Parallel()

	s, _ := newShopper(t)
	rec := s.do(http.MethodGet, "/basket?lang=de", nil)
	assertContains(t, rec, `<html lang="de-DE">`, "<title>Warenkorb | Storefront</title>", "Ihr Warenkorb ist leer")

	rec = s.do(http.MethodGet, "/basket", nil)
	assertContains(t, rec, `<html lang="de-DE">`)
}

func TestConfirmAndUpdate(t *testing.T) {
	t.Parallel()

	s, _ := newShopper(t)
	assertContains(t, s.do(http.MethodGet, "/checkout/confirm", nil), "Order confirmed")

	rec := s.do(http.MethodPost, "/checkout/update", url.Values{"orderid": {"o1"}, "status": {"paid"}})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestRootRedirectsToBasket(t *testing.T) {
	t.Parallel()

	s, _ := newShopper(t)
	rec := s.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/basket" {
		t.Fatalf("response = %d %q, want redirect to /basket", rec.Code, rec.Header().Get("Location"))
	}
}

func TestNewHandlerRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
	if _, err := NewServer(Config{}); err == nil {
		t.Fatal("expected error for missing address")
	}
}
