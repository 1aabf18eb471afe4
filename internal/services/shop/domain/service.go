package domain

import (
	"context"
	"errors"
)

// ErrNothingToProcess is returned by a service provider that needs no
// further shopper interaction for an order.
var ErrNothingToProcess = errors.New("nothing to process")

// Provider configuration keys injected by the checkout.
const (
	ConfigURLSuccess = "payment.url-success"
	ConfigURLUpdate  = "payment.url-update"
)

// Form methods.
const (
	FormMethodPost     = "POST"
	FormMethodGet      = "GET"
	FormMethodRedirect = "REDIRECT"
)

// FormField is one named form value.
type FormField struct {
	Name  string
	Value string
}

// Form describes where and how the shopper continues after ordering.
type Form struct {
	URL    string
	Method string
	Fields []FormField
}

// ServiceItem is a configured delivery or payment option.
type ServiceItem struct {
	ServiceID string
	SiteID    string
	Type      string
	Code      string
	Label     string
	Provider  string
	Price     int64
	Position  int
	Config    map[string]string
}

// ID returns the service id.
func (s *ServiceItem) ID() string { return s.ServiceID }

// ToMap exposes the service under the "service." prefix.
func (s *ServiceItem) ToMap() map[string]any {
	return map[string]any{
		"service.id":       s.ServiceID,
		"service.siteid":   s.SiteID,
		"service.type":     s.Type,
		"service.code":     s.Code,
		"service.label":    s.Label,
		"service.provider": s.Provider,
		"service.price":    FormatPrice(s.Price),
		"service.position": s.Position,
	}
}

// ServiceProvider executes the external part of a delivery or payment option.
type ServiceProvider interface {
	// Code returns the service code the provider was created for.
	Code() string
	// InjectConfig adds a global configuration value such as
	// ConfigURLSuccess before Process runs.
	InjectConfig(key, value string)
	// Process returns the form continuing the order, or
	// ErrNothingToProcess.
	Process(ctx context.Context, order *OrderItem) (*Form, error)
}

// ServiceManager lists services and creates their providers.
type ServiceManager interface {
	Manager[*ServiceItem]
	// Provider returns a provider for the service with the given type and
	// code.
	Provider(ctx context.Context, typ, code string) (ServiceProvider, error)
}
