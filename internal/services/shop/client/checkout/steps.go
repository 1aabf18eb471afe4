package checkout

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// Address form parameters, prefixed with "ca_payment_".
var addressFields = []string{"firstname", "lastname", "street", "city", "postal", "country", "email"}

var requiredAddressFields = map[string]bool{"firstname": true, "lastname": true, "street": true, "city": true, "email": true}

// View keys written by the step clients.
const (
	AddressKey          = "addressPayment"
	DeliveryServicesKey = "deliveryServices"
	PaymentServicesKey  = "paymentServices"
)

// Step is a checkout step. It renders only while it is the active step;
// its Process applies the step's form parameters and makes the step active
// again when they are rejected.
type Step struct {
	*client.Container
	name string
}

// StepOptions describe one step.
type StepOptions struct {
	ViewParams func(ctx context.Context, v *view.View) error
	Process    func(ctx context.Context, v *view.View) error
	Subparts   []string
}

// NewStep returns the step client called name.
func NewStep(deps client.Deps, name string, opts StepOptions) *Step {
	s := &Step{name: name}
	s.Container = client.NewContainer(deps, "checkout/standard/"+name, client.Options{
		Prefix:         name,
		Subparts:       opts.Subparts,
		HeaderTemplate: "checkout/standard/" + name + "-header-default",
		BodyTemplate:   "checkout/standard/" + name + "-body-default",
		ViewParams:     opts.ViewParams,
		Cacheable:      client.Never,
		Process: func(ctx context.Context, v *view.View) error {
			if opts.Process == nil {
				return nil
			}
			if err := opts.Process(ctx, v); err != nil {
				v.Set(StepActiveKey, name)
				return err
			}
			return nil
		},
	})
	return s
}

// Header implements client.Client.
func (s *Step) Header(ctx context.Context, v *view.View) (string, error) {
	if ActiveStep(v) != s.name {
		return "", nil
	}
	return s.Container.Header(ctx, v)
}

// Body implements client.Client.
func (s *Step) Body(ctx context.Context, v *view.View) (string, error) {
	if ActiveStep(v) != s.name {
		return "", nil
	}
	return s.Container.Body(ctx, v)
}

func newAddress(deps client.Deps) client.Client {
	return NewStep(deps, "address", StepOptions{
		ViewParams: func(_ context.Context, v *view.View) error {
			if basket := view.Value[*domain.Basket](v, BasketKey, nil); basket != nil {
				v.Set(AddressKey, basket.Addresses[domain.AddressPayment])
			}
			return nil
		},
		Process: func(ctx context.Context, v *view.View) error {
			values := map[string]string{}
			posted := false
			for _, field := range addressFields {
				value := strings.TrimSpace(v.Param("ca_payment_"+field, ""))
				values[field] = value
				posted = posted || value != ""
			}
			if !posted {
				return nil
			}
			for _, field := range addressFields {
				if requiredAddressFields[field] && values[field] == "" {
					return apperrors.Presentation(apperrors.CodeClientInvalidParam, "Billing address field \"%s\" is required", field)
				}
			}
			return deps.Baskets.SetAddress(ctx, domain.Address{
				Type:      domain.AddressPayment,
				FirstName: values["firstname"],
				LastName:  values["lastname"],
				Street:    values["street"],
				City:      values["city"],
				Postal:    values["postal"],
				Country:   values["country"],
				Email:     values["email"],
			})
		},
	})
}

func newDelivery(deps client.Deps) client.Client {
	return newServiceStep(deps, "delivery", domain.ServiceDelivery, DeliveryParam, DeliveryServicesKey)
}

func newPayment(deps client.Deps) client.Client {
	return newServiceStep(deps, "payment", domain.ServicePayment, PaymentParam, PaymentServicesKey)
}

func newServiceStep(deps client.Deps, name, typ, param, key string) client.Client {
	return NewStep(deps, name, StepOptions{
		ViewParams: func(ctx context.Context, v *view.View) error {
			services, err := deps.Catalog.Services(ctx, typ)
			if err != nil {
				return err
			}
			v.Set(key, services)
			return nil
		},
		Process: func(ctx context.Context, v *view.View) error {
			code := strings.TrimSpace(v.Param(param, ""))
			if code == "" {
				return nil
			}
			return deps.Baskets.SetService(ctx, typ, code)
		},
	})
}

func newSummary(deps client.Deps) client.Client {
	return NewStep(deps, "summary", StepOptions{
		Process: func(ctx context.Context, v *view.View) error {
			values := v.Params(CommentParam)
			if len(values) == 0 {
				return nil
			}
			return deps.Baskets.SetComment(ctx, values[0])
		},
	})
}
