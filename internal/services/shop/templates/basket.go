package templates

import (
	"github.com/a-h/templ"
	"github.com/louisbranch/storefront/internal/services/shop/client/basket"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

func registerBasket(e *Engine) {
	e.Register("basket/standard/header-default", children("basketHeader"))
	e.Register("basket/standard/body-default", basketBody)
}

func basketBody(v *view.View) templ.Component {
	return component(v, func(h *html) {
		b := view.Value[*domain.Basket](v, basket.BasketKey, nil)
		update := view.Value(v, basket.UpdateURLKey, "")
		h.raw(`<section class="basket-standard"><h1>`)
		h.t("Basket")
		h.raw("</h1>")
		h.errors(basket.ErrorListKey)
		if b.Empty() {
			h.raw(`<p class="empty">`)
			h.t("Your basket is empty")
			h.raw("</p></section>")
			return
		}
		h.raw(`<ul class="basket-lines">`)
		for i, product := range b.Products {
			position := itoa(i)
			h.raw(`<li class="line"><span class="name">`)
			h.text(product.Name)
			h.raw(`</span><form class="edit" method="post"`)
			h.attr("action", update)
			h.raw(">")
			h.hidden(basket.ActionParam, "edit")
			h.hidden(basket.PositionParam, position)
			h.raw(`<input type="number" min="1"`)
			h.attr("name", basket.QuantityParam)
			h.attr("value", itoa(product.Quantity))
			h.raw(`><button type="submit">`)
			h.t("Update")
			h.raw(`</button></form><form class="delete" method="post"`)
			h.attr("action", update)
			h.raw(">")
			h.hidden(basket.ActionParam, "delete")
			h.hidden(basket.PositionParam, position)
			h.raw(`<button type="submit">`)
			h.t("Remove")
			h.raw(`</button></form><span class="price">`)
			h.text(domain.FormatPrice(product.Total()))
			h.raw("</span></li>")
		}
		h.raw("</ul>")
		basketTotal(h, b)
		h.raw(`<a class="btn checkout"`)
		h.attr("href", view.Value(v, basket.CheckoutURLKey, ""))
		h.raw(">")
		h.t("Checkout")
		h.raw("</a></section>")
	})
}

func basketTotal(h *html, b *domain.Basket) {
	h.raw(`<p class="total">`)
	h.t("Total")
	h.raw(`: <span class="price">`)
	h.text(domain.FormatPrice(b.Total()))
	h.raw("</span></p>")
}
