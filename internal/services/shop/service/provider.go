// Package service implements the delivery and payment providers that service
// items are configured with.
package service

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
)

// Provider names stored on service items.
const (
	ProviderManual   = "manual"
	ProviderPrepay   = "prepay"
	ProviderRedirect = "redirect"
)

// ConfigRedirectURL is the service configuration key holding the gateway URL
// of redirect providers.
const ConfigRedirectURL = "redirect.url"

// Constructor builds a provider for one service item.
type Constructor func(item domain.ServiceItem) domain.ServiceProvider

var constructors = map[string]Constructor{
	ProviderManual:   func(item domain.ServiceItem) domain.ServiceProvider { return &Manual{base: newBase(item)} },
	ProviderPrepay:   func(item domain.ServiceItem) domain.ServiceProvider { return &Prepay{base: newBase(item)} },
	ProviderRedirect: func(item domain.ServiceItem) domain.ServiceProvider { return &Redirect{base: newBase(item)} },
}

// NewFactory returns a factory creating providers by the item's provider
// name. Extra constructors override or extend the built-in ones.
func NewFactory(extra map[string]Constructor) func(item domain.ServiceItem) (domain.ServiceProvider, error) {
	known := make(map[string]Constructor, len(constructors)+len(extra))
	for name, ctor := range constructors {
		known[name] = ctor
	}
	for name, ctor := range extra {
		known[strings.ToLower(strings.TrimSpace(name))] = ctor
	}
	return func(item domain.ServiceItem) (domain.ServiceProvider, error) {
		ctor, ok := known[strings.ToLower(strings.TrimSpace(item.Provider))]
		if !ok || ctor == nil {
			return nil, apperrors.DomainError(apperrors.CodeUnknownService, "Service provider \"%s\" is not available", item.Provider)
		}
		return ctor(item), nil
	}
}

// base holds the code and configuration shared by all providers. Providers
// are created per call, so the configuration is not synchronized.
type base struct {
	code   string
	config map[string]string
}

func newBase(item domain.ServiceItem) base {
	config := make(map[string]string, len(item.Config))
	for key, value := range item.Config {
		config[key] = value
	}
	return base{code: item.Code, config: config}
}

// Code returns the service code.
func (b *base) Code() string { return b.code }

// InjectConfig sets a global configuration value.
func (b *base) InjectConfig(key, value string) {
	b.config[key] = value
}

func (b *base) configValue(key string) string {
	return b.config[key]
}

// Manual is a provider for services fulfilled outside the shop, such as
// delivery by the merchant. It never produces a form.
type Manual struct {
	base
}

// Process returns no form.
func (p *Manual) Process(ctx context.Context, _ *domain.OrderItem) (*domain.Form, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

// Prepay is a payment provider where the shopper pays by bank transfer after
// ordering, so there is nothing to process online.
type Prepay struct {
	base
}

// Process signals that the order needs no further shopper interaction.
func (p *Prepay) Process(ctx context.Context, order *domain.OrderItem) (*domain.Form, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.DomainError(apperrors.CodeNotFound, "Item with ID \"%s\" not found", "")
	}
	return nil, domain.ErrNothingToProcess
}

// Redirect is a payment provider that hands the shopper to an external
// gateway with a POST form.
type Redirect struct {
	base
}

// Process returns the gateway form for order.
func (p *Redirect) Process(ctx context.Context, order *domain.OrderItem) (*domain.Form, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.DomainError(apperrors.CodeNotFound, "Item with ID \"%s\" not found", "")
	}
	gateway := strings.TrimSpace(p.configValue(ConfigRedirectURL))
	if gateway == "" {
		return nil, apperrors.DomainError(apperrors.CodeUnknownService, "Service provider \"%s\" is not available", p.Code())
	}
	return &domain.Form{
		URL:    gateway,
		Method: domain.FormMethodPost,
		Fields: []domain.FormField{
			{Name: "orderid", Value: order.OrderID},
			{Name: "baseid", Value: order.BaseID},
			{Name: "url-success", Value: p.configValue(domain.ConfigURLSuccess)},
			{Name: "url-update", Value: p.configValue(domain.ConfigURLUpdate)},
		},
	}, nil
}

var (
	_ domain.ServiceProvider = (*Manual)(nil)
	_ domain.ServiceProvider = (*Prepay)(nil)
	_ domain.ServiceProvider = (*Redirect)(nil)
)
