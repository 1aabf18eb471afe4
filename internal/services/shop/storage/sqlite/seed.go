package sqlite

import (
	"context"
	"fmt"

	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
)

// DemoSiteCode is the site created by SeedDemo.
const DemoSiteCode = "default"

// SeedDemo creates a demo site with products, attributes and services when
// the site does not have products yet.
func (s *Store) SeedDemo(ctx context.Context, gatewayURL string) error {
	siteID, err := s.SaveSite(ctx, locale.Site{
		Code:       DemoSiteCode,
		Label:      "Demo shop",
		LanguageID: "en",
		CurrencyID: "EUR",
		Languages:  []string{"en", "de"},
		Currencies: []string{"EUR"},
	})
	if err != nil {
		return fmt.Errorf("seed site: %w", err)
	}
	ctx = locale.WithLocale(ctx, locale.Item{SiteID: siteID, SiteCode: DemoSiteCode, LanguageID: "en", CurrencyID: "EUR"})

	products := s.Products()
	_, total, err := products.SearchItems(ctx, products.CreateSearch().SetSlice(0, 1))
	if err != nil {
		return fmt.Errorf("check seeded products: %w", err)
	}
	if total > 0 {
		return nil
	}

	attrs := s.Attributes()
	seedAttrs := []*domain.AttributeItem{
		{Type: "color", Code: "red", Label: "Red", Position: 0},
		{Type: "color", Code: "blue", Label: "Blue", Position: 1},
		{Type: "size", Code: "m", Label: "M", Position: 0},
		{Type: "size", Code: "l", Label: "L", Position: 1},
		{Type: "material", Code: "cotton", Label: "Cotton", Position: 0},
	}
	for _, attr := range seedAttrs {
		if err := attrs.SaveItem(ctx, attr); err != nil {
			return fmt.Errorf("seed attribute %s/%s: %w", attr.Type, attr.Code, err)
		}
	}

	shirt := &domain.ProductItem{
		Code: "demo-shirt", Label: "Demo shirt", Price: 1999, CurrencyID: "EUR", Stock: 25, Status: 1,
		Attributes: []domain.ProductAttribute{
			{ListType: domain.ListConfig, Position: 0, Attribute: *seedAttrs[0]},
			{ListType: domain.ListConfig, Position: 1, Attribute: *seedAttrs[1]},
			{ListType: domain.ListConfig, Position: 2, Attribute: *seedAttrs[2]},
			{ListType: domain.ListConfig, Position: 3, Attribute: *seedAttrs[3]},
			{ListType: domain.ListHidden, Position: 0, Attribute: *seedAttrs[4]},
		},
	}
	mug := &domain.ProductItem{Code: "demo-mug", Label: "Demo mug", Price: 899, CurrencyID: "EUR", Stock: 3, Status: 1}
	for _, product := range []*domain.ProductItem{shirt, mug} {
		if err := products.SaveItem(ctx, product); err != nil {
			return fmt.Errorf("seed product %s: %w", product.Code, err)
		}
	}

	services := s.Services(nil)
	seedServices := []*domain.ServiceItem{
		{Type: domain.ServiceDelivery, Code: "standard", Label: "Standard delivery", Provider: "manual", Price: 495},
		{Type: domain.ServicePayment, Code: "prepay", Label: "Prepayment", Provider: "prepay", Position: 0},
		{Type: domain.ServicePayment, Code: "gateway", Label: "Payment gateway", Provider: "redirect", Position: 1,
			Config: map[string]string{"redirect.url": gatewayURL}},
	}
	for _, service := range seedServices {
		if err := services.SaveItem(ctx, service); err != nil {
			return fmt.Errorf("seed service %s: %w", service.Code, err)
		}
	}
	return nil
}
