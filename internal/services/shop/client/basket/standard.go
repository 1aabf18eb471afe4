// Package basket implements the basket page client.
package basket

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/client"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// Request parameters.
const (
	ActionParam    = "b_action"
	ProductParam   = "b_prodid"
	QuantityParam  = "b_quantity"
	PositionParam  = "b_position"
	AttributeParam = "b_attrconfid"
)

// View keys.
const (
	ErrorListKey   = "basketErrorList"
	BasketKey      = "basketBasket"
	CheckoutURLKey = "basketUrlCheckout"
	UpdateURLKey   = "basketUrlUpdate"
)

// Register adds the basket client to registry.
func Register(registry *client.Registry) {
	registry.Register("basket/standard", client.DefaultName, NewStandard)
}

// NewStandard returns the basket page client.
func NewStandard(deps client.Deps) client.Client {
	return client.NewContainer(deps, "basket/standard", client.Options{
		Prefix:         "basket",
		HeaderTemplate: "basket/standard/header-default",
		BodyTemplate:   "basket/standard/body-default",
		Cacheable:      client.Never,
		ErrorList:      ErrorListKey,
		ViewParams: func(ctx context.Context, v *view.View) error {
			basket, err := deps.Baskets.Get(ctx)
			if err != nil {
				return err
			}
			v.Set(BasketKey, basket)
			v.Set(CheckoutURLKey, client.URL(v, "checkout/standard", "checkout", "index", nil, nil))
			v.Set(UpdateURLKey, client.URL(v, "basket/standard", "basket", "index", nil, nil))
			return nil
		},
		Process: func(ctx context.Context, v *view.View) error {
			switch strings.ToLower(strings.TrimSpace(v.Param(ActionParam, ""))) {
			case "":
				return nil
			case "add":
				quantity, err := quantity(v)
				if err != nil {
					return err
				}
				return deps.Baskets.AddProduct(ctx, v.Param(ProductParam, ""), quantity, v.Params(AttributeParam))
			case "edit":
				position, err := position(v)
				if err != nil {
					return err
				}
				quantity, err := quantity(v)
				if err != nil {
					return err
				}
				return deps.Baskets.EditProduct(ctx, position, quantity)
			case "delete":
				position, err := position(v)
				if err != nil {
					return err
				}
				return deps.Baskets.DeleteProduct(ctx, position)
			default:
				return apperrors.Presentation(apperrors.CodeClientInvalidParam, "Unknown basket action \"%s\"", v.Param(ActionParam, ""))
			}
		},
	})
}

func quantity(v *view.View) (int, error) {
	raw := strings.TrimSpace(v.Param(QuantityParam, "1"))
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, apperrors.Application(apperrors.CodeInvalidQuantity, "Invalid quantity \"%s\"", raw)
	}
	return value, nil
}

func position(v *view.View) (int, error) {
	raw := strings.TrimSpace(v.Param(PositionParam, ""))
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, apperrors.Presentation(apperrors.CodeClientInvalidParam, "Invalid basket position \"%s\"", raw)
	}
	return value, nil
}
