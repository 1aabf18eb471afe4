package domain

import "time"

// Product list types linking attributes to products.
const (
	ListDefault = "default"
	ListConfig  = "config"
	ListHidden  = "hidden"
)

// ProductItem is a catalog product.
type ProductItem struct {
	ProductID  string
	SiteID     string
	Code       string
	Label      string
	Price      int64
	CurrencyID string
	Stock      int
	Status     int
	Attributes []ProductAttribute
	CTime      time.Time
	MTime      time.Time
}

// ProductAttribute links an attribute to a product through a list type.
type ProductAttribute struct {
	ListType  string
	Position  int
	Attribute AttributeItem
}

// ID returns the product id.
func (p *ProductItem) ID() string { return p.ProductID }

// ToMap exposes the product under the "product." prefix.
func (p *ProductItem) ToMap() map[string]any {
	return map[string]any{
		"product.id":         p.ProductID,
		"product.siteid":     p.SiteID,
		"product.code":       p.Code,
		"product.label":      p.Label,
		"product.price":      FormatPrice(p.Price),
		"product.currencyid": p.CurrencyID,
		"product.stock":      p.Stock,
		"product.status":     p.Status,
		"product.ctime":      formatTime(p.CTime),
		"product.mtime":      formatTime(p.MTime),
	}
}

// RefAttributes returns the attributes linked with listType, in position order.
func (p *ProductItem) RefAttributes(listType string) []AttributeItem {
	var out []AttributeItem
	for _, ref := range p.Attributes {
		if ref.ListType == listType {
			out = append(out, ref.Attribute)
		}
	}
	return out
}

// RefIDs returns the ids of attributes linked with listType.
func (p *ProductItem) RefIDs(listType string) []string {
	attrs := p.RefAttributes(listType)
	out := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr.AttributeID)
	}
	return out
}

// AttributeItem is a product attribute such as a color or size.
type AttributeItem struct {
	AttributeID string
	Type        string
	Code        string
	Label       string
	Position    int
}

// ID returns the attribute id.
func (a *AttributeItem) ID() string { return a.AttributeID }

// ToMap exposes the attribute under the "attribute." prefix.
func (a *AttributeItem) ToMap() map[string]any {
	return map[string]any{
		"attribute.id":       a.AttributeID,
		"attribute.type":     a.Type,
		"attribute.code":     a.Code,
		"attribute.label":    a.Label,
		"attribute.position": a.Position,
	}
}
