package checkout

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// PaymentFormKey holds the form continuing the order at the payment provider.
const PaymentFormKey = "paymentForm"

// Payment hands a stored order to the provider of the chosen payment option.
type Payment struct {
	*client.Container
}

// NewPayment returns the order payment client.
func NewPayment(deps client.Deps) client.Client {
	p := &Payment{}
	p.Container = client.NewContainer(deps, "checkout/standard/order/payment", client.Options{
		Prefix:         "payment",
		HeaderTemplate: "checkout/standard/order-payment-header-default",
		BodyTemplate:   "checkout/standard/order-payment-body-default",
		Process:        p.process,
		Cacheable:      client.Never,
	})
	return p
}

func (p *Payment) process(ctx context.Context, v *view.View) error {
	absolute := map[string]any{view.ConfigAbsoluteURI: true}
	confirmURL := client.URL(v, "checkout/confirm", "checkout", "confirm", absolute, nil)
	updateURL := client.URL(v, "checkout/update", "checkout", "update", absolute, nil)

	basket := view.Value[*domain.Basket](v, OrderBasketKey, nil)
	order := view.Value[*domain.OrderItem](v, OrderItemKey, nil)
	redirect := &domain.Form{URL: confirmURL, Method: domain.FormMethodRedirect}

	if basket == nil || order == nil {
		v.Set(PaymentFormKey, redirect)
		return nil
	}
	service, ok := basket.Service(domain.ServicePayment)
	if !ok {
		v.Set(PaymentFormKey, redirect)
		return nil
	}

	provider, err := p.Deps().Services.Provider(ctx, domain.ServicePayment, service.Code)
	if err != nil {
		return err
	}
	provider.InjectConfig(domain.ConfigURLSuccess, confirmURL)
	provider.InjectConfig(domain.ConfigURLUpdate, updateURL)

	form, err := provider.Process(ctx, order)
	switch {
	case errors.Is(err, domain.ErrNothingToProcess):
		form = redirect
	case err != nil:
		return err
	}
	if form == nil {
		return apperrors.Presentation(apperrors.CodeInvalidServiceResponse,
			"Invalid process response from service provider with code \"%s\"", service.Code)
	}
	v.Set(PaymentFormKey, form)
	return nil
}
