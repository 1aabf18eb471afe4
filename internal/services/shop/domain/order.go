package domain

import (
	"fmt"
	"time"
)

// Order payment states.
const (
	PayStatusUnfinished = 0
	PayStatusPending    = 1
	PayStatusAuthorized = 2
	PayStatusReceived   = 3
	PayStatusRefused    = 4
)

// OrderBaseItem is the persisted header of a basket turned into an order.
type OrderBaseItem struct {
	BaseID     string
	SiteID     string
	LanguageID string
	CurrencyID string
	CustomerID string
	Comment    string
	Price      int64
	Status     int
	CTime      time.Time
	MTime      time.Time
}

// ID returns the order base id, empty until saved.
func (i *OrderBaseItem) ID() string { return i.BaseID }

// ToMap exposes the order base under the "order.base." prefix.
func (i *OrderBaseItem) ToMap() map[string]any {
	return map[string]any{
		"order.base.id":         i.BaseID,
		"order.base.siteid":     i.SiteID,
		"order.base.languageid": i.LanguageID,
		"order.base.currencyid": i.CurrencyID,
		"order.base.customerid": i.CustomerID,
		"order.base.comment":    i.Comment,
		"order.base.price":      FormatPrice(i.Price),
		"order.base.status":     i.Status,
		"order.base.ctime":      formatTime(i.CTime),
		"order.base.mtime":      formatTime(i.MTime),
	}
}

// OrderItem is one placed order referencing its order base.
type OrderItem struct {
	OrderID        string
	BaseID         string
	SiteID         string
	Type           string
	PaymentStatus  int
	DeliveryStatus int
	CTime          time.Time
	MTime          time.Time
}

// ID returns the order id.
func (i *OrderItem) ID() string { return i.OrderID }

// ToMap exposes the order under the "order." prefix.
func (i *OrderItem) ToMap() map[string]any {
	return map[string]any{
		"order.id":             i.OrderID,
		"order.baseid":         i.BaseID,
		"order.siteid":         i.SiteID,
		"order.type":           i.Type,
		"order.statuspayment":  i.PaymentStatus,
		"order.statusdelivery": i.DeliveryStatus,
		"order.ctime":          formatTime(i.CTime),
		"order.mtime":          formatTime(i.MTime),
	}
}

// OrderProduct is one basket line.
type OrderProduct struct {
	ProductID  string
	Code       string
	Name       string
	Quantity   int
	Price      int64
	Attributes []OrderProductAttribute
}

// Total returns the line price times quantity.
func (p OrderProduct) Total() int64 {
	return p.Price * int64(p.Quantity)
}

// OrderProductAttribute is a configurable attribute chosen for a basket line.
type OrderProductAttribute struct {
	AttributeID string
	Type        string
	Code        string
	Name        string
}

// Address is a billing or delivery address attached to a basket.
type Address struct {
	Type      string
	FirstName string
	LastName  string
	Street    string
	City      string
	Postal    string
	Country   string
	Email     string
}

// OrderService is a delivery or payment option chosen for a basket.
type OrderService struct {
	Type  string
	Code  string
	Name  string
	Price int64
}

// Address and service types.
const (
	AddressPayment  = "payment"
	AddressDelivery = "delivery"
	ServicePayment  = "payment"
	ServiceDelivery = "delivery"
)

// Basket is the shopper's working order base.
type Basket struct {
	CustomerID string
	Comment    string
	LanguageID string
	CurrencyID string
	Products   []OrderProduct
	Addresses  map[string]Address
	Services   map[string]OrderService
}

// NewBasket returns an empty basket.
func NewBasket() *Basket {
	return &Basket{Addresses: map[string]Address{}, Services: map[string]OrderService{}}
}

// AddProduct adds a line, merging it into an existing line for the same
// product and attribute selection.
func (b *Basket) AddProduct(product OrderProduct) {
	for i := range b.Products {
		if b.Products[i].ProductID == product.ProductID && sameAttributes(b.Products[i].Attributes, product.Attributes) {
			b.Products[i].Quantity += product.Quantity
			return
		}
	}
	b.Products = append(b.Products, product)
}

// DeleteProduct removes the line at position.
func (b *Basket) DeleteProduct(position int) bool {
	if position < 0 || position >= len(b.Products) {
		return false
	}
	b.Products = append(b.Products[:position], b.Products[position+1:]...)
	return true
}

// SetAddress attaches an address by its type.
func (b *Basket) SetAddress(address Address) {
	if b.Addresses == nil {
		b.Addresses = map[string]Address{}
	}
	b.Addresses[address.Type] = address
}

// SetService attaches a service by its type.
func (b *Basket) SetService(service OrderService) {
	if b.Services == nil {
		b.Services = map[string]OrderService{}
	}
	b.Services[service.Type] = service
}

// Service returns the service of the given type.
func (b *Basket) Service(typ string) (OrderService, bool) {
	service, ok := b.Services[typ]
	return service, ok
}

// Total returns the sum of product lines and services.
func (b *Basket) Total() int64 {
	var total int64
	for _, product := range b.Products {
		total += product.Total()
	}
	for _, service := range b.Services {
		total += service.Price
	}
	return total
}

// Empty reports whether the basket has no products.
func (b *Basket) Empty() bool {
	return b == nil || len(b.Products) == 0
}

// Clone returns a deep copy.
func (b *Basket) Clone() *Basket {
	if b == nil {
		return NewBasket()
	}
	out := *b
	out.Products = make([]OrderProduct, len(b.Products))
	for i, product := range b.Products {
		product.Attributes = append([]OrderProductAttribute(nil), product.Attributes...)
		out.Products[i] = product
	}
	out.Addresses = make(map[string]Address, len(b.Addresses))
	for key, value := range b.Addresses {
		out.Addresses[key] = value
	}
	out.Services = make(map[string]OrderService, len(b.Services))
	for key, value := range b.Services {
		out.Services[key] = value
	}
	return &out
}

func sameAttributes(a, b []OrderProductAttribute) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, attr := range a {
		seen[attr.AttributeID]++
	}
	for _, attr := range b {
		seen[attr.AttributeID]--
		if seen[attr.AttributeID] < 0 {
			return false
		}
	}
	return true
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format("2006-01-02 15:04:05")
}

// FormatPrice renders minor units as a decimal string, e.g. 1250 as "12.50".
func FormatPrice(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
