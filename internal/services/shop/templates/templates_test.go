package templates

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/services/shop/client/basket"
	"github.com/louisbranch/storefront/internal/services/shop/client/checkout"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"golang.org/x/text/language"
)

func newView(engine *Engine) *view.View {
	return view.New(view.Options{Renderer: engine})
}

func TestRenderUnknownTemplate(t *testing.T) {
	t.Parallel()

	_, err := NewEngine().Render(context.Background(), "missing/body", newView(nil))
	if got := apperrors.KindOf(err); got != apperrors.KindPresentation {
		t.Fatalf("KindOf(err) = %v, want %v", got, apperrors.KindPresentation)
	}
}

func TestRegisterReplacesTemplate(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	engine.Register("/basket/standard/body-default/", children("custom"))
	v := newView(engine)
	v.Set("custom", "<b>x</b>")

	got, err := v.Render(context.Background(), "basket/standard/body-default")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "<b>x</b>" {
		t.Fatalf("Render() = %q, want %q", got, "<b>x</b>")
	}
}

func TestPaymentBodyRendersRedirectLink(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	v := newView(engine)
	v.Set(checkout.PaymentFormKey, &domain.Form{URL: "https://shop.test/checkout/confirm?a=1&b=2", Method: domain.FormMethodRedirect})

	got, err := v.Render(context.Background(), "checkout/standard/order-payment-body-default")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, `<a class="btn payment" href="https://shop.test/checkout/confirm?a=1&amp;b=2">`) {
		t.Fatalf("expected redirect link, got %q", got)
	}
	if strings.Contains(got, "<form") {
		t.Fatalf("redirect must not render a form, got %q", got)
	}
}

func TestPaymentBodyRendersPostForm(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	v := newView(engine)
	v.Set(checkout.PaymentFormKey, &domain.Form{
		URL:    "https://pay.test/",
		Method: domain.FormMethodPost,
		Fields: []domain.FormField{{Name: "orderid", Value: "o1"}, {Name: "url-success", Value: `"quoted"`}},
	})

	got, err := v.Render(context.Background(), "checkout/standard/order-payment-body-default")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		`<form method="POST" action="https://pay.test/">`,
		`<input type="hidden" name="orderid" value="o1">`,
		`<input type="hidden" name="url-success" value="&#34;quoted&#34;">`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestPaymentBodyEmptyWithoutForm(t *testing.T) {
	t.Parallel()

	got, err := newView(NewEngine()).Render(context.Background(), "checkout/standard/order-payment-body-default")
	if err != nil || got != "" {
		t.Fatalf("Render() = (%q, %v), want empty", got, err)
	}
}

func TestBasketBodyShowsErrorsAndEmptyNotice(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	v := view.New(view.Options{Renderer: engine, Translator: i18n.NewTranslator(nil, language.MustParse("de-DE"))})
	view.AppendErrors(v, basket.ErrorListKey, "<script>")
	v.Set(basket.BasketKey, domain.NewBasket())

	got, err := v.Render(context.Background(), "basket/standard/body-default")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, `<ul class="error-list"><li>&lt;script&gt;</li></ul>`) {
		t.Fatalf("expected escaped error list, got %q", got)
	}
	if !strings.Contains(got, "Warenkorb") {
		t.Fatalf("expected translated heading, got %q", got)
	}
}

func TestCheckoutBodyMarksActiveStep(t *testing.T) {
	t.Parallel()

	v := newView(NewEngine())
	v.Set(checkout.StepsKey, []string{"address", "delivery"})
	v.Set(checkout.StepActiveKey, "delivery")
	v.Set(checkout.BodyKey, "<div>step</div>")
	v.Set(checkout.URLBackKey, "/checkout?c-step=address")

	got, err := v.Render(context.Background(), "checkout/standard/body-default")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		`<li class="step">Address</li><li class="step active">Delivery</li>`,
		"<div>step</div>",
		`href="/checkout?c-step=address"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestPageComposesDocument(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	err := Page(PageOptions{Title: "Basket", Lang: "de-DE", Header: "<meta name=x>", Body: "<p>body</p>"}).Render(context.Background(), &b)
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	got := b.String()
	for _, want := range []string{`<html lang="de-DE">`, "<title>Basket | Storefront</title>", "<meta name=x></head>", "<p>body</p>"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestComposePageTitle(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                    AppName,
		"Basket":              "Basket | " + AppName,
		"Basket | " + AppName: "Basket | " + AppName,
	}
	for title, want := range tests {
		if got := ComposePageTitle(title); got != want {
			t.Fatalf("ComposePageTitle(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestCheckoutFrameMarksActiveStepAndEscapes(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	err := CheckoutFrame(CheckoutPage{
		Title:     "Checkout",
		Steps:     []CheckoutStep{{Label: "address"}, {Label: "payment", Active: true}},
		Errors:    []string{"<bad>"},
		Body:      "<p>step</p>",
		BackURL:   "/basket?a=1&b=2",
		BackLabel: "Back",
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		`<li class="step">address</li>`,
		`<li class="step active">payment</li>`,
		`<li>&lt;bad&gt;</li>`,
		`<p>step</p>`,
		`href="/basket?a=1&amp;b=2"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s in %q", want, got)
		}
	}
}

func TestPaymentButtonWithoutFormRendersNothing(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	if err := PaymentButton(PaymentAction{Label: "Pay"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("Render() = %q, want empty", buf.String())
	}
}
