// Package domain defines the shop records and the manager contracts the
// storefront clients, frontend controllers and admin commands depend on.
package domain

import (
	"context"

	"github.com/louisbranch/storefront/internal/services/shop/criteria"
)

// Item is a stored record addressable by id. ToMap exposes its fields under
// dotted keys such as "order.base.comment".
type Item interface {
	ID() string
	ToMap() map[string]any
}

// Manager persists and queries one kind of item.
type Manager[T Item] interface {
	CreateItem() T
	CreateSearch() *criteria.Search
	GetItem(ctx context.Context, id string) (T, error)
	SaveItem(ctx context.Context, item T) error
	// SearchItems returns the matching slice and the total match count.
	SearchItems(ctx context.Context, search *criteria.Search) ([]T, int, error)
	DeleteItems(ctx context.Context, ids []string) error
}

// OrderBaseManager manages order bases and stores session baskets.
type OrderBaseManager interface {
	Manager[*OrderBaseItem]
	// Store persists a basket as a new order base with its products,
	// addresses and services.
	Store(ctx context.Context, basket *Basket) (*OrderBaseItem, error)
	// Load returns the stored basket of an order base.
	Load(ctx context.Context, baseID string) (*Basket, error)
}

// OrderManager manages orders. SubManager("base") returns the order base
// manager.
type OrderManager interface {
	Manager[*OrderItem]
	SubManager(name string) (OrderBaseManager, error)
}

// ProductManager manages catalog products.
type ProductManager interface {
	Manager[*ProductItem]
}

// AttributeManager manages product attributes.
type AttributeManager interface {
	Manager[*AttributeItem]
}
