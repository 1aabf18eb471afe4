package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
)

// CheckoutStep is one entry of the checkout step list.
type CheckoutStep struct {
	// Label is the translated step name.
	Label string
	// Active marks the step being shown.
	Active bool
}

// CheckoutPage holds the checkout frame around the active step.
type CheckoutPage struct {
	Title  string
	Steps  []CheckoutStep
	Errors []string
	// Body is the rendered active step, already escaped.
	Body      string
	BackURL   string
	BackLabel string
}

// PaymentAction holds how the shopper continues to the payment provider.
type PaymentAction struct {
	Form  *domain.Form
	Label string
}

// markup adapts a writer function to a component that does not need the view.
func markup(write func(h *html)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w}
		write(h)
		return h.err
	})
}

// CheckoutFrame renders the checkout heading, steps, errors, body and back link.
func CheckoutFrame(page CheckoutPage) templ.Component {
	return markup(func(h *html) {
		h.raw(`<section class="checkout-standard"><h1>`)
		h.text(page.Title)
		h.raw(`</h1><ol class="steps">`)
		for _, step := range page.Steps {
			class := "step"
			if step.Active {
				class += " active"
			}
			h.raw("<li")
			h.attr("class", class)
			h.raw(">")
			h.text(step.Label)
			h.raw("</li>")
		}
		h.raw("</ol>")
		h.list(page.Errors)
		h.raw(page.Body)
		h.raw(`<nav class="button-group"><a class="btn back"`)
		h.attr("href", page.BackURL)
		h.raw(">")
		h.text(page.BackLabel)
		h.raw("</a></nav></section>")
	})
}

// PaymentButton renders a link for redirects and a hidden-field form otherwise.
// A nil form renders nothing.
func PaymentButton(action PaymentAction) templ.Component {
	return markup(func(h *html) {
		form := action.Form
		if form == nil {
			return
		}
		h.raw(`<div class="checkout-standard-order-payment">`)
		if form.Method == domain.FormMethodRedirect {
			h.raw(`<a class="btn payment"`)
			h.attr("href", form.URL)
			h.raw(">")
			h.text(action.Label)
			h.raw("</a></div>")
			return
		}
		h.raw("<form")
		h.attr("method", form.Method)
		h.attr("action", form.URL)
		h.raw(">")
		for _, field := range form.Fields {
			h.hidden(field.Name, field.Value)
		}
		h.raw(`<button type="submit" class="btn payment">`)
		h.text(action.Label)
		h.raw("</button></form></div>")
	})
}
