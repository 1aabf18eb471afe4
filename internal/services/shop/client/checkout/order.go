package checkout

import (
	"context"

	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// View keys written by the order step.
const (
	OrderItemKey   = "orderItem"
	OrderBasketKey = "orderBasket"
)

// Order is the last checkout step. When the shopper confirms the order it
// stores the basket and lets its sub-clients, such as the payment client,
// continue with the stored order.
type Order struct {
	*Step
}

// NewOrder returns the order step client.
func NewOrder(deps client.Deps) client.Client {
	return &Order{Step: NewStep(deps, "order", StepOptions{Subparts: []string{"payment"}})}
}

// Process stores the order when the order step was submitted and then
// processes the sub-clients. Nothing happens otherwise.
func (o *Order) Process(ctx context.Context, v *view.View) error {
	if v.Param(StepParam, "") != "order" || v.Param(OrderParam, "") != "1" {
		return nil
	}
	order, basket, err := o.Deps().Orders.Store(ctx)
	if err != nil {
		v.Set(StepActiveKey, "order")
		return err
	}
	v.Set(OrderItemKey, order)
	v.Set(OrderBasketKey, basket)
	return o.ProcessSubClients(ctx, v)
}
