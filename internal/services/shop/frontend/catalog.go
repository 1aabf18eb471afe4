package frontend

import (
	"context"

	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
)

// Catalog reads products and their attributes.
type Catalog interface {
	Product(ctx context.Context, productID string) (*domain.ProductItem, error)
	Attributes(ctx context.Context, ids []string) (map[string]*domain.AttributeItem, error)
	Services(ctx context.Context, typ string) ([]*domain.ServiceItem, error)
}

// CatalogController implements Catalog.
type CatalogController struct {
	products   domain.ProductManager
	attributes domain.AttributeManager
	services   domain.ServiceManager
}

// NewCatalogController returns a catalog controller.
func NewCatalogController(products domain.ProductManager, attributes domain.AttributeManager, services domain.ServiceManager) *CatalogController {
	return &CatalogController{products: products, attributes: attributes, services: services}
}

// Product returns an orderable product.
func (c *CatalogController) Product(ctx context.Context, productID string) (*domain.ProductItem, error) {
	return availableProduct(ctx, c.products, productID)
}

// Attributes returns the attributes with ids keyed by id.
func (c *CatalogController) Attributes(ctx context.Context, ids []string) (map[string]*domain.AttributeItem, error) {
	out := make(map[string]*domain.AttributeItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	search := c.attributes.CreateSearch()
	search.SetConditions(search.Compare(criteria.OpEqual, "attribute.id", ids))
	search.SetSlice(0, len(ids))
	items, _, err := c.attributes.SearchItems(ctx, search)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.AttributeID] = item
	}
	return out, nil
}

// Services returns the delivery or payment options of typ by position.
func (c *CatalogController) Services(ctx context.Context, typ string) ([]*domain.ServiceItem, error) {
	search := c.services.CreateSearch()
	search.SetConditions(search.Compare(criteria.OpEqual, "service.type", typ))
	search.SetSortations(criteria.Sort{Name: "service.position"})
	items, _, err := c.services.SearchItems(ctx, search)
	return items, err
}

var _ Catalog = (*CatalogController)(nil)
