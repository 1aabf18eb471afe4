package templates

import (
	"github.com/a-h/templ"
	"github.com/louisbranch/storefront/internal/services/shop/client/checkout"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

func registerCheckout(e *Engine) {
	e.Register("checkout/standard/header-default", children(checkout.HeaderKey))
	e.Register("checkout/standard/body-default", checkoutBody)
	for _, step := range []string{"address", "delivery", "payment", "summary"} {
		e.Register("checkout/standard/"+step+"-header-default", children(step+"Header"))
	}
	e.Register("checkout/standard/address-body-default", addressBody)
	e.Register("checkout/standard/delivery-body-default", serviceBody("delivery", checkout.DeliveryParam, checkout.DeliveryServicesKey))
	e.Register("checkout/standard/payment-body-default", serviceBody("payment", checkout.PaymentParam, checkout.PaymentServicesKey))
	e.Register("checkout/standard/summary-body-default", summaryBody)
	e.Register("checkout/standard/order-header-default", children("orderHeader"))
	e.Register("checkout/standard/order-body-default", orderBody)
	e.Register("checkout/standard/order-payment-header-default", children("paymentHeader"))
	e.Register("checkout/standard/order-payment-body-default", paymentBody)
}

func checkoutBody(v *view.View) templ.Component {
	active := checkout.ActiveStep(v)
	page := CheckoutPage{
		Title:     v.Translate("client", "Checkout"),
		Errors:    view.Value[[]string](v, checkout.ErrorListKey, nil),
		Body:      view.Value(v, checkout.BodyKey, ""),
		BackURL:   view.Value(v, checkout.URLBackKey, ""),
		BackLabel: v.Translate("client", "Back"),
	}
	for _, step := range view.Value[[]string](v, checkout.StepsKey, nil) {
		page.Steps = append(page.Steps, CheckoutStep{Label: v.Translate("client", step), Active: step == active})
	}
	return CheckoutFrame(page)
}

// stepForm writes a form posting to the next step.
func stepForm(h *html, class string, fields func()) {
	h.raw("<form")
	h.attr("class", class)
	h.raw(` method="post"`)
	h.attr("action", view.Value(h.v, checkout.URLNextKey, ""))
	h.raw(">")
	fields()
	h.raw(`<button type="submit" class="btn next">`)
	h.t("Next")
	h.raw("</button></form>")
}

var addressLabels = []struct{ field, label string }{
	{"firstname", "First name"},
	{"lastname", "Last name"},
	{"street", "Street"},
	{"postal", "Postal code"},
	{"city", "City"},
	{"country", "Country"},
	{"email", "E-mail"},
}

func addressBody(v *view.View) templ.Component {
	return component(v, func(h *html) {
		address := view.Value(v, checkout.AddressKey, domain.Address{})
		values := map[string]string{
			"firstname": address.FirstName,
			"lastname":  address.LastName,
			"street":    address.Street,
			"postal":    address.Postal,
			"city":      address.City,
			"country":   address.Country,
			"email":     address.Email,
		}
		h.raw(`<section class="checkout-standard-address"><h2>`)
		h.t("Billing address")
		h.raw("</h2>")
		stepForm(h, "address-payment", func() {
			for _, f := range addressLabels {
				h.raw("<label>")
				h.t(f.label)
				h.raw(`<input type="text"`)
				h.attr("name", "ca_payment_"+f.field)
				h.attr("value", values[f.field])
				h.raw("></label>")
			}
		})
		h.raw("</section>")
	})
}

func serviceBody(step, param, key string) Template {
	return func(v *view.View) templ.Component {
		return component(v, func(h *html) {
			selected := ""
			if basket := view.Value[*domain.Basket](v, checkout.BasketKey, nil); basket != nil {
				if service, ok := basket.Service(step); ok {
					selected = service.Code
				}
			}
			h.raw("<section")
			h.attr("class", "checkout-standard-"+step)
			h.raw("><h2>")
			h.t(step)
			h.raw("</h2>")
			stepForm(h, step+"-options", func() {
				for i, service := range view.Value[[]*domain.ServiceItem](v, key, nil) {
					h.raw(`<label class="option"><input type="radio"`)
					h.attr("name", param)
					h.attr("value", service.Code)
					if service.Code == selected || (selected == "" && i == 0) {
						h.raw(" checked")
					}
					h.raw(`><span class="label">`)
					h.text(service.Label)
					h.raw(`</span> <span class="price">`)
					h.text(domain.FormatPrice(service.Price))
					h.raw("</span></label>")
				}
			})
			h.raw("</section>")
		})
	}
}

// basketTable writes the basket lines, services and total.
func basketTable(h *html, basket *domain.Basket) {
	h.raw(`<table class="basket"><thead><tr><th>`)
	h.t("Product")
	h.raw("</th><th>")
	h.t("Quantity")
	h.raw("</th><th>")
	h.t("Price")
	h.raw("</th></tr></thead><tbody>")
	if basket != nil {
		for _, product := range basket.Products {
			h.raw("<tr><td>")
			h.text(product.Name)
			for _, attr := range product.Attributes {
				h.raw(` <span class="attribute">`)
				h.text(attr.Name)
				h.raw("</span>")
			}
			h.raw(`</td><td class="quantity">`)
			h.text(itoa(product.Quantity))
			h.raw(`</td><td class="price">`)
			h.text(domain.FormatPrice(product.Total()))
			h.raw("</td></tr>")
		}
		for _, typ := range []string{domain.ServiceDelivery, domain.ServicePayment} {
			service, ok := basket.Service(typ)
			if !ok {
				continue
			}
			h.raw(`<tr class="service"><td colspan="2">`)
			h.text(service.Name)
			h.raw(`</td><td class="price">`)
			h.text(domain.FormatPrice(service.Price))
			h.raw("</td></tr>")
		}
	}
	h.raw(`</tbody><tfoot><tr><td colspan="2">`)
	h.t("Total")
	h.raw(`</td><td class="price total">`)
	var total int64
	if basket != nil {
		total = basket.Total()
	}
	h.text(domain.FormatPrice(total))
	h.raw("</td></tr></tfoot></table>")
}

func summaryBody(v *view.View) templ.Component {
	return component(v, func(h *html) {
		basket := view.Value[*domain.Basket](v, checkout.BasketKey, nil)
		h.raw(`<section class="checkout-standard-summary"><h2>`)
		h.t("summary")
		h.raw("</h2>")
		basketTable(h, basket)
		comment := ""
		if basket != nil {
			comment = basket.Comment
		}
		stepForm(h, "summary-comment", func() {
			h.raw("<label>")
			h.t("Comment")
			h.raw(`<textarea name="` + checkout.CommentParam + `">`)
			h.text(comment)
			h.raw("</textarea></label>")
		})
		h.raw("</section>")
	})
}

func orderBody(v *view.View) templ.Component {
	return component(v, func(h *html) {
		h.raw(`<section class="checkout-standard-order">`)
		if order := view.Value[*domain.OrderItem](v, checkout.OrderItemKey, nil); order != nil {
			h.raw("<h2>")
			h.t("Thank you for your order")
			h.raw(`</h2><p class="order-id">`)
			h.t("Order %s", order.OrderID)
			h.raw("</p>")
			h.raw(view.Value(v, "orderBody", ""))
			h.raw("</section>")
			return
		}
		h.raw(`<form method="post"`)
		h.attr("action", checkout.StepURL(v, "order"))
		h.raw(">")
		h.hidden(checkout.OrderParam, "1")
		h.raw(`<button type="submit" class="btn order">`)
		h.t("Place order")
		h.raw("</button></form></section>")
	})
}

func paymentBody(v *view.View) templ.Component {
	return PaymentButton(PaymentAction{
		Form:  view.Value[*domain.Form](v, checkout.PaymentFormKey, nil),
		Label: v.Translate("client", "Proceed to payment"),
	})
}
