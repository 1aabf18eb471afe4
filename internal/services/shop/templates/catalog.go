package templates

import (
	"strconv"

	"github.com/a-h/templ"
	"github.com/louisbranch/storefront/internal/services/shop/client/basket"
	"github.com/louisbranch/storefront/internal/services/shop/client/catalog"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

func registerCatalog(e *Engine) {
	e.Register("catalog/detail/header-default", detailHeader)
	e.Register("catalog/detail/body-default", detailBody)
	e.Register("catalog/detail/basket-header-default", children("basketHeader"))
	e.Register("catalog/detail/basket-body-default", detailBasketBody)
	e.Register("catalog/detail/basket-attribute-header-default", children("attributeHeader"))
	e.Register("catalog/detail/basket-attribute-body-default", attributeBody)
}

func detailHeader(v *view.View) templ.Component {
	return component(v, func(h *html) {
		if product := view.Value[*domain.ProductItem](v, catalog.ProductKey, nil); product != nil {
			h.raw(`<meta name="description"`)
			h.attr("content", product.Label)
			h.raw(">")
		}
		h.raw(view.Value(v, "detailHeader", ""))
	})
}

func detailBody(v *view.View) templ.Component {
	return component(v, func(h *html) {
		h.raw(`<section class="catalog-detail">`)
		h.errors(catalog.ErrorListKey)
		if product := view.Value[*domain.ProductItem](v, catalog.ProductKey, nil); product != nil {
			h.raw("<h1>")
			h.text(product.Label)
			h.raw(`</h1><p class="price">`)
			h.text(domain.FormatPrice(product.Price) + " " + product.CurrencyID)
			h.raw("</p>")
		}
		h.raw(view.Value(v, "detailBody", ""))
		h.raw("</section>")
	})
}

func detailBasketBody(v *view.View) templ.Component {
	return component(v, func(h *html) {
		product := view.Value[*domain.ProductItem](v, catalog.ProductKey, nil)
		if product == nil {
			return
		}
		h.raw(`<form class="catalog-detail-basket" method="post"`)
		h.attr("action", view.Value(v, catalog.BasketURLKey, ""))
		h.raw(">")
		h.hidden(basket.ActionParam, "add")
		h.hidden(basket.ProductParam, product.ProductID)
		h.raw(view.Value(v, "basketBody", ""))
		h.raw("<label>")
		h.t("Quantity")
		h.raw(`<input type="number" min="1" value="1"`)
		h.attr("name", basket.QuantityParam)
		h.raw(`></label><button type="submit" class="btn add">`)
		h.t("Add to basket")
		h.raw("</button></form>")
	})
}

func attributeBody(v *view.View) templ.Component {
	return component(v, func(h *html) {
		grouped := view.Value[map[string][]*domain.AttributeItem](v, catalog.AttributeConfigKey, nil)
		h.raw(`<div class="catalog-detail-basket-attribute">`)
		for _, typ := range view.Value[[]string](v, catalog.AttributeTypesKey, nil) {
			h.raw("<label")
			h.attr("class", "select-"+typ)
			h.raw(">")
			h.t(typ)
			h.raw("<select")
			h.attr("name", basket.AttributeParam)
			h.raw(">")
			for _, item := range grouped[typ] {
				h.raw("<option")
				h.attr("value", item.AttributeID)
				h.raw(">")
				h.text(item.Label)
				h.raw("</option>")
			}
			h.raw("</select></label>")
		}
		for _, item := range view.Value[[]domain.AttributeItem](v, catalog.AttributeHiddenKey, nil) {
			h.raw(`<span class="attribute hidden"`)
			h.attr("data-id", item.AttributeID)
			h.raw(">")
			h.text(item.Label)
			h.raw("</span>")
		}
		h.raw("</div>")
	})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
