// Package catalog implements the product detail clients.
package catalog

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// ProductParam selects the product shown by the detail client.
const ProductParam = "d_prodid"

// View keys.
const (
	ErrorListKey       = "detailErrorList"
	ProductKey         = "detailProductItem"
	AttributeItemsKey  = "detailProductAttributeItems"
	BasketURLKey       = "basketUrlAdd"
	AttributeConfigKey = "attributeConfigItems"
	AttributeTypesKey  = "attributeConfigTypes"
	AttributeHiddenKey = "attributeHiddenItems"
)

// Register adds the catalog clients to registry.
func Register(registry *client.Registry) {
	registry.Register("catalog/detail", client.DefaultName, NewDetail)
	registry.Register("catalog/detail/basket", client.DefaultName, newBasket)
	registry.Register("catalog/detail/basket/attribute", client.DefaultName, newAttribute)
}

// NewDetail returns the product detail root.
func NewDetail(deps client.Deps) client.Client {
	return client.NewContainer(deps, "catalog/detail", client.Options{
		Prefix:         "detail",
		Subparts:       []string{"basket"},
		HeaderTemplate: "catalog/detail/header-default",
		BodyTemplate:   "catalog/detail/body-default",
		ErrorList:      ErrorListKey,
		ViewParams: func(ctx context.Context, v *view.View) error {
			id := strings.TrimSpace(v.Param(ProductParam, ""))
			if id == "" {
				return apperrors.Presentation(apperrors.CodeClientInvalidParam, "Product ID is missing")
			}
			product, err := deps.Catalog.Product(ctx, id)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(product.Attributes))
			for _, ref := range product.Attributes {
				ids = append(ids, ref.Attribute.AttributeID)
			}
			attrs, err := deps.Catalog.Attributes(ctx, ids)
			if err != nil {
				return err
			}
			v.Set(ProductKey, product)
			v.Set(AttributeItemsKey, attrs)
			return nil
		},
	})
}

func newBasket(deps client.Deps) client.Client {
	return client.NewContainer(deps, "catalog/detail/basket", client.Options{
		Prefix:         "basket",
		Subparts:       []string{"attribute"},
		HeaderTemplate: "catalog/detail/basket-header-default",
		BodyTemplate:   "catalog/detail/basket-body-default",
		ViewParams: func(_ context.Context, v *view.View) error {
			v.Set(BasketURLKey, client.URL(v, "basket/standard", "basket", "index", nil, nil))
			return nil
		},
	})
}

func newAttribute(deps client.Deps) client.Client {
	return client.NewContainer(deps, "catalog/detail/basket/attribute", client.Options{
		Prefix:         "attribute",
		HeaderTemplate: "catalog/detail/basket-attribute-header-default",
		BodyTemplate:   "catalog/detail/basket-attribute-body-default",
		ViewParams: func(_ context.Context, v *view.View) error {
			product := view.Value[*domain.ProductItem](v, ProductKey, nil)
			if product == nil {
				return apperrors.Presentation(apperrors.CodeClientInvalidParam, "Product ID is missing")
			}
			attrs := view.Value[map[string]*domain.AttributeItem](v, AttributeItemsKey, nil)
			types, grouped := GroupAttributes(product.RefIDs(domain.ListConfig), attrs)
			v.Set(AttributeTypesKey, types)
			v.Set(AttributeConfigKey, grouped)
			v.Set(AttributeHiddenKey, product.RefAttributes(domain.ListHidden))
			return nil
		},
	})
}

// GroupAttributes groups the attributes with the given ids by type. Types
// are returned in the order they first appear; ids without an item are
// skipped.
func GroupAttributes(ids []string, items map[string]*domain.AttributeItem) ([]string, map[string][]*domain.AttributeItem) {
	var types []string
	grouped := map[string][]*domain.AttributeItem{}
	for _, id := range ids {
		item, ok := items[id]
		if !ok || item == nil {
			continue
		}
		if _, seen := grouped[item.Type]; !seen {
			types = append(types, item.Type)
		}
		grouped[item.Type] = append(grouped[item.Type], item)
	}
	return types, grouped
}
