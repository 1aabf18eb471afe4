package frontend

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
)

// Plugin error sub-codes reported when a basket cannot be ordered.
const (
	CodeStockNotEnough     = "stock.notenough"
	CodeProductUnavailable = "product.unavailable"
	CodeAddressMissing     = "address.missing"
	CodeDeliveryMissing    = "delivery.missing"
	CodePaymentMissing     = "payment.missing"
)

// Orders places orders from the session basket.
type Orders interface {
	// Store validates and persists the session basket as an order and
	// empties the session basket. It returns the order and the stored
	// basket.
	Store(ctx context.Context) (*domain.OrderItem, *domain.Basket, error)
}

// OrderController implements Orders.
type OrderController struct {
	sessions *SessionStore
	orders   domain.OrderManager
	products domain.ProductManager
}

// NewOrderController returns an order controller.
func NewOrderController(sessions *SessionStore, orders domain.OrderManager, products domain.ProductManager) *OrderController {
	return &OrderController{sessions: sessions, orders: orders, products: products}
}

// Store implements Orders.
func (c *OrderController) Store(ctx context.Context) (*domain.OrderItem, *domain.Basket, error) {
	basket, err := c.sessions.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if basket.Empty() {
		return nil, nil, apperrors.Application(apperrors.CodeBasketEmpty, "Basket is empty")
	}
	products, err := c.check(ctx, basket)
	if err != nil {
		return nil, nil, err
	}

	bases, err := c.orders.SubManager("base")
	if err != nil {
		return nil, nil, err
	}
	base, err := bases.Store(ctx, basket)
	if err != nil {
		return nil, nil, err
	}
	order := c.orders.CreateItem()
	order.BaseID = base.BaseID
	order.PaymentStatus = domain.PayStatusUnfinished
	if err := c.orders.SaveItem(ctx, order); err != nil {
		return nil, nil, err
	}
	for _, line := range basket.Products {
		product := products[line.ProductID]
		product.Stock -= line.Quantity
	}
	for _, product := range products {
		if err := c.products.SaveItem(ctx, product); err != nil {
			return nil, nil, fmt.Errorf("update stock of %s: %w", product.Code, err)
		}
	}
	if err := c.sessions.Clear(ctx); err != nil {
		return nil, nil, err
	}
	return order, basket, nil
}

// check validates the basket and returns the ordered products by id.
func (c *OrderController) check(ctx context.Context, basket *domain.Basket) (map[string]*domain.ProductItem, error) {
	var codes []apperrors.ErrorCode
	products := map[string]*domain.ProductItem{}
	wanted := map[string]int{}
	for pos, line := range basket.Products {
		key := strconv.Itoa(pos)
		product, ok := products[line.ProductID]
		if !ok {
			var err error
			product, err = c.products.GetItem(ctx, line.ProductID)
			if err != nil {
				if e, isApp := apperrors.As(err); isApp && e.Code == apperrors.CodeNotFound {
					codes = append(codes, apperrors.ErrorCode{Section: "product", Key: key, Code: CodeProductUnavailable})
					continue
				}
				return nil, err
			}
			products[line.ProductID] = product
		}
		if product.Status != 1 {
			codes = append(codes, apperrors.ErrorCode{Section: "product", Key: key, Code: CodeProductUnavailable})
			continue
		}
		wanted[line.ProductID] += line.Quantity
		if wanted[line.ProductID] > product.Stock {
			codes = append(codes, apperrors.ErrorCode{Section: "product", Key: key, Code: CodeStockNotEnough})
		}
	}
	if _, ok := basket.Addresses[domain.AddressPayment]; !ok {
		codes = append(codes, apperrors.ErrorCode{Section: "address", Key: domain.AddressPayment, Code: CodeAddressMissing})
	}
	if _, ok := basket.Service(domain.ServiceDelivery); !ok {
		codes = append(codes, apperrors.ErrorCode{Section: "service", Key: domain.ServiceDelivery, Code: CodeDeliveryMissing})
	}
	if _, ok := basket.Service(domain.ServicePayment); !ok {
		codes = append(codes, apperrors.ErrorCode{Section: "service", Key: domain.ServicePayment, Code: CodePaymentMissing})
	}
	if len(codes) > 0 {
		return nil, apperrors.Plugin(apperrors.CodeBasketInvalid, "Basket content is invalid", codes)
	}
	return products, nil
}

var _ Orders = (*OrderController)(nil)
