package frontend

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
)

// Baskets manages the session basket.
type Baskets interface {
	Get(ctx context.Context) (*domain.Basket, error)
	AddProduct(ctx context.Context, productID string, quantity int, attributeIDs []string) error
	EditProduct(ctx context.Context, position, quantity int) error
	DeleteProduct(ctx context.Context, position int) error
	SetAddress(ctx context.Context, address domain.Address) error
	SetService(ctx context.Context, typ, code string) error
	SetComment(ctx context.Context, comment string) error
}

// BasketController implements Baskets on a session store.
type BasketController struct {
	sessions *SessionStore
	products domain.ProductManager
	services domain.ServiceManager
}

// NewBasketController returns a basket controller.
func NewBasketController(sessions *SessionStore, products domain.ProductManager, services domain.ServiceManager) *BasketController {
	return &BasketController{sessions: sessions, products: products, services: services}
}

// Get returns the current basket.
func (c *BasketController) Get(ctx context.Context) (*domain.Basket, error) {
	return c.sessions.Load(ctx)
}

// AddProduct adds quantity of the product with the chosen configurable
// attributes. Hidden attributes of the product are always attached.
func (c *BasketController) AddProduct(ctx context.Context, productID string, quantity int, attributeIDs []string) error {
	productID = strings.TrimSpace(productID)
	if quantity < 1 {
		return apperrors.Application(apperrors.CodeInvalidQuantity, "Invalid quantity \"%s\"", strconv.Itoa(quantity))
	}
	product, err := availableProduct(ctx, c.products, productID)
	if err != nil {
		return err
	}

	chosen := make(map[string]bool, len(attributeIDs))
	for _, id := range attributeIDs {
		chosen[strings.TrimSpace(id)] = true
	}
	var attrs []domain.OrderProductAttribute
	for _, ref := range product.Attributes {
		if ref.ListType == domain.ListConfig && !chosen[ref.Attribute.AttributeID] {
			continue
		}
		if ref.ListType != domain.ListConfig && ref.ListType != domain.ListHidden {
			continue
		}
		attrs = append(attrs, domain.OrderProductAttribute{
			AttributeID: ref.Attribute.AttributeID,
			Type:        ref.Attribute.Type,
			Code:        ref.Attribute.Code,
			Name:        ref.Attribute.Label,
		})
	}

	return c.sessions.Update(ctx, func(basket *domain.Basket) error {
		if loc, ok := locale.FromContext(ctx); ok {
			basket.LanguageID, basket.CurrencyID = loc.LanguageID, loc.CurrencyID
		}
		basket.AddProduct(domain.OrderProduct{
			ProductID:  product.ProductID,
			Code:       product.Code,
			Name:       product.Label,
			Quantity:   quantity,
			Price:      product.Price,
			Attributes: attrs,
		})
		return nil
	})
}

// EditProduct changes the quantity of the line at position.
func (c *BasketController) EditProduct(ctx context.Context, position, quantity int) error {
	if quantity < 1 {
		return apperrors.Application(apperrors.CodeInvalidQuantity, "Invalid quantity \"%s\"", strconv.Itoa(quantity))
	}
	return c.sessions.Update(ctx, func(basket *domain.Basket) error {
		if position < 0 || position >= len(basket.Products) {
			return apperrors.DomainError(apperrors.CodeNotFound, "Item with ID \"%s\" not found", strconv.Itoa(position))
		}
		basket.Products[position].Quantity = quantity
		return nil
	})
}

// DeleteProduct removes the line at position.
func (c *BasketController) DeleteProduct(ctx context.Context, position int) error {
	return c.sessions.Update(ctx, func(basket *domain.Basket) error {
		if !basket.DeleteProduct(position) {
			return apperrors.DomainError(apperrors.CodeNotFound, "Item with ID \"%s\" not found", strconv.Itoa(position))
		}
		return nil
	})
}

// SetAddress attaches address to the basket.
func (c *BasketController) SetAddress(ctx context.Context, address domain.Address) error {
	return c.sessions.Update(ctx, func(basket *domain.Basket) error {
		basket.SetAddress(address)
		return nil
	})
}

// SetService attaches the delivery or payment option with code.
func (c *BasketController) SetService(ctx context.Context, typ, code string) error {
	search := c.services.CreateSearch()
	search.SetConditions(search.Combine(criteria.OpAnd,
		search.Compare(criteria.OpEqual, "service.type", typ),
		search.Compare(criteria.OpEqual, "service.code", strings.TrimSpace(code)),
	))
	search.SetSlice(0, 1)
	items, _, err := c.services.SearchItems(ctx, search)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return apperrors.Application(apperrors.CodeUnknownService, "No delivery or payment option selected")
	}
	item := items[0]
	return c.sessions.Update(ctx, func(basket *domain.Basket) error {
		basket.SetService(domain.OrderService{Type: item.Type, Code: item.Code, Name: item.Label, Price: item.Price})
		return nil
	})
}

// SetComment stores the shopper's order comment.
func (c *BasketController) SetComment(ctx context.Context, comment string) error {
	return c.sessions.Update(ctx, func(basket *domain.Basket) error {
		basket.Comment = strings.TrimSpace(comment)
		return nil
	})
}

func availableProduct(ctx context.Context, products domain.ProductManager, productID string) (*domain.ProductItem, error) {
	if productID == "" {
		return nil, apperrors.Application(apperrors.CodeProductUnavailable, "Product with ID \"%s\" is not available", productID)
	}
	product, err := products.GetItem(ctx, productID)
	if err != nil {
		if e, ok := apperrors.As(err); ok && e.Code == apperrors.CodeNotFound {
			return nil, apperrors.Application(apperrors.CodeProductUnavailable, "Product with ID \"%s\" is not available", productID)
		}
		return nil, err
	}
	if product.Status != 1 {
		return nil, apperrors.Application(apperrors.CodeProductUnavailable, "Product with ID \"%s\" is not available", productID)
	}
	return product, nil
}

var _ Baskets = (*BasketController)(nil)
