// Package checkout implements the checkout wizard clients.
package checkout

import (
	"context"

	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// Request parameters.
const (
	StepParam     = "c-step"
	OrderParam    = "cs_order"
	DeliveryParam = "c_delivery"
	PaymentParam  = "c_payment"
	CommentParam  = "cs_comment"
)

// View keys written by the standard checkout client.
const (
	ErrorListKey  = "standardErrorList"
	BasketKey     = "standardBasket"
	StepsKey      = "standardSteps"
	StepActiveKey = "standardStepActive"
	URLBackKey    = "standardUrlBack"
	URLNextKey    = "standardUrlNext"
	HeaderKey     = "standardHeader"
	BodyKey       = "standardBody"
)

// Steps are the default checkout steps in order.
var Steps = []string{"address", "delivery", "payment", "summary", "order"}

// Register adds the checkout clients to registry.
func Register(registry *client.Registry) {
	registry.Register("checkout/standard", client.DefaultName, NewStandard)
	registry.Register("checkout/standard/address", client.DefaultName, newAddress)
	registry.Register("checkout/standard/delivery", client.DefaultName, newDelivery)
	registry.Register("checkout/standard/payment", client.DefaultName, newPayment)
	registry.Register("checkout/standard/summary", client.DefaultName, newSummary)
	registry.Register("checkout/standard/order", client.DefaultName, NewOrder)
	registry.Register("checkout/standard/order/payment", client.DefaultName, NewPayment)
}

// Standard is the checkout root. It exposes the session basket, the steps
// and the back and next URLs, and catches the errors of all steps into
// standardErrorList.
type Standard struct {
	*client.Container
}

// NewStandard returns the checkout root client.
func NewStandard(deps client.Deps) client.Client {
	s := &Standard{}
	s.Container = client.NewContainer(deps, "checkout/standard", client.Options{
		Prefix:         "standard",
		Subparts:       Steps,
		HeaderTemplate: "checkout/standard/header-default",
		BodyTemplate:   "checkout/standard/body-default",
		ViewParams:     s.viewParams,
		Cacheable:      client.Never,
		ErrorList:      ErrorListKey,
	})
	return s
}

func (s *Standard) viewParams(ctx context.Context, v *view.View) error {
	basket, err := s.Deps().Baskets.Get(ctx)
	if err != nil {
		return err
	}
	v.Set(BasketKey, basket)

	steps := s.SubpartNames()
	v.Set(StepsKey, steps)
	if !v.Has(StepActiveKey) {
		first := ""
		if len(steps) > 0 {
			first = steps[0]
		}
		v.Set(StepActiveKey, v.Param(StepParam, first))
	}
	active := view.Value(v, StepActiveKey, "")

	previous, next := client.StepNeighbours(steps, active)
	if previous != "" {
		v.Set(URLBackKey, StepURL(v, previous))
	} else {
		v.Set(URLBackKey, client.URL(v, "basket/standard", "basket", "index", nil, nil))
	}
	if next != "" {
		v.Set(URLNextKey, StepURL(v, next))
	} else {
		v.Set(URLNextKey, "")
	}
	return nil
}

// StepURL returns the checkout URL showing step.
func StepURL(v *view.View, step string) string {
	return client.URL(v, "checkout/standard", "checkout", "index", nil, map[string]string{StepParam: step})
}

// ActiveStep returns the step the checkout shows.
func ActiveStep(v *view.View) string {
	return view.Value(v, StepActiveKey, "")
}
