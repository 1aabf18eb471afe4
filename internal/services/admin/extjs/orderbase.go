package extjs

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/pagination"
	"github.com/louisbranch/storefront/internal/services/shop/criteria"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"go.einride.tech/aip/filtering"
	"google.golang.org/protobuf/types/known/structpb"
)

// OrderBaseName is the controller name used in command routing.
const OrderBaseName = "Order_Base"

// LocaleResolver places the locale of a site into a context.
type LocaleResolver interface {
	With(ctx context.Context, siteCode, languageID, currencyID string) (context.Context, error)
}

var orderBaseFilterFields = []criteria.FilterField{
	{Ident: "id", Name: "order.base.id", Type: filtering.TypeString},
	{Ident: "customerid", Name: "order.base.customerid", Type: filtering.TypeString},
	{Ident: "comment", Name: "order.base.comment", Type: filtering.TypeString},
	{Ident: "languageid", Name: "order.base.languageid", Type: filtering.TypeString},
	{Ident: "currencyid", Name: "order.base.currencyid", Type: filtering.TypeString},
	{Ident: "status", Name: "order.base.status", Type: filtering.TypeInt},
}

var orderBaseSort = pagination.SortConfig{Allowed: []string{
	"order.base.id",
	"order.base.customerid",
	"order.base.comment",
	"order.base.price",
	"order.base.status",
	"order.base.ctime",
	"order.base.mtime",
}}

var orderBaseLimit = pagination.LimitConfig{Default: criteria.DefaultSliceSize, Max: 1000}

// OrderBaseController manages order bases for the admin interface.
type OrderBaseController struct {
	manager domain.OrderBaseManager
	locales LocaleResolver
}

// NewOrderBaseController uses the "base" sub-manager of orders.
func NewOrderBaseController(orders domain.OrderManager, locales LocaleResolver) (*OrderBaseController, error) {
	if orders == nil {
		return nil, errors.New("order manager is required")
	}
	if locales == nil {
		return nil, errors.New("locale resolver is required")
	}
	manager, err := orders.SubManager("base")
	if err != nil {
		return nil, err
	}
	return &OrderBaseController{manager: manager, locales: locales}, nil
}

// Name implements Controller.
func (c *OrderBaseController) Name() string { return OrderBaseName }

// Methods implements Controller.
func (c *OrderBaseController) Methods() []MethodSpec {
	site := Param{Type: "string", Name: "site"}
	return []MethodSpec{
		{
			Name:    "saveItems",
			Params:  []Param{site, {Type: "array", Name: "items"}},
			Returns: "array",
			Call:    c.SaveItems,
		},
		{
			Name: "searchItems",
			Params: []Param{
				site,
				{Type: "string", Name: "filter", Optional: true},
				{Type: "integer", Name: "start", Optional: true},
				{Type: "integer", Name: "limit", Optional: true},
				{Type: "string", Name: "sort", Optional: true},
				{Type: "string", Name: "dir", Optional: true},
			},
			Returns: "array",
			Call:    c.SearchItems,
		},
		{
			Name:    "deleteItems",
			Params:  []Param{site, {Type: "array", Name: "items"}},
			Returns: "array",
			Call:    c.DeleteItems,
		},
		{
			Name:    "getServiceDescription",
			Returns: "array",
			Call:    c.GetServiceDescription,
		},
	}
}

// SaveItems creates or updates one order base or a list of them.
//
// Each entry is saved under the locale of "site" narrowed by its optional
// "order.base.languageid" and "order.base.currencyid". Saved items are read
// back by id, in query order, and returned in the shape of the input: a
// single object for a single object, a list for a list.
func (c *OrderBaseController) SaveItems(ctx context.Context, params *structpb.Struct) (*structpb.Struct, error) {
	if err := checkParams(params, "site", "items"); err != nil {
		return nil, err
	}
	site := stringParam(params, "site")
	list, many, err := entries(params.GetFields()["items"], "items")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list))
	for _, entry := range list {
		itemCtx, err := c.locales.With(ctx, site, stringParam(entry, "order.base.languageid"), stringParam(entry, "order.base.currencyid"))
		if err != nil {
			return nil, err
		}
		item := c.createItem(entry)
		if err := c.manager.SaveItem(itemCtx, item); err != nil {
			return nil, err
		}
		ids = append(ids, item.ID())
	}

	items, err := c.itemsByID(ctx, site, ids)
	if err != nil {
		return nil, err
	}
	var out any = items
	if !many {
		out = nil
		if len(items) > 0 {
			out = items[0]
		}
	}
	return structpb.NewStruct(map[string]any{"items": out, "success": true})
}

// SearchItems returns a page of order bases matching an optional AIP-160
// filter over id, customerid, comment, languageid, currencyid and status.
func (c *OrderBaseController) SearchItems(ctx context.Context, params *structpb.Struct) (*structpb.Struct, error) {
	if err := checkParams(params, "site"); err != nil {
		return nil, err
	}
	start, err := intParam(params, "start", 0)
	if err != nil {
		return nil, err
	}
	limit, err := intParam(params, "limit", 0)
	if err != nil {
		return nil, err
	}
	sortKey, err := pagination.NormalizeSort(stringParam(params, "sort"), orderBaseSort)
	if err != nil {
		return nil, err
	}
	conditions, err := criteria.ParseFilter(stringParam(params, "filter"), orderBaseFilterFields)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, apperrors.CodeParamsInvalid, "Invalid filter", err)
	}

	search := c.manager.CreateSearch()
	search.SetConditions(conditions)
	search.SetSlice(start, pagination.ClampLimit(limit, orderBaseLimit))
	if sortKey != "" {
		search.SetSortations(criteria.Sort{Name: sortKey, Desc: strings.EqualFold(stringParam(params, "dir"), "DESC")})
	}

	siteCtx, err := c.locales.With(ctx, stringParam(params, "site"), "", "")
	if err != nil {
		return nil, err
	}
	items, total, err := c.manager.SearchItems(siteCtx, search)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{"items": toList(items), "total": total, "success": true})
}

// DeleteItems removes order bases by id.
func (c *OrderBaseController) DeleteItems(ctx context.Context, params *structpb.Struct) (*structpb.Struct, error) {
	if err := checkParams(params, "site", "items"); err != nil {
		return nil, err
	}
	ids, err := stringList(params.GetFields()["items"], "items")
	if err != nil {
		return nil, err
	}
	siteCtx, err := c.locales.With(ctx, stringParam(params, "site"), "", "")
	if err != nil {
		return nil, err
	}
	if err := c.manager.DeleteItems(siteCtx, ids); err != nil {
		return nil, err
	}
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return structpb.NewStruct(map[string]any{"items": out, "success": true})
}

// GetServiceDescription lists the commands of the controller.
func (c *OrderBaseController) GetServiceDescription(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	out := map[string]any{}
	for _, spec := range c.Methods() {
		out[OrderBaseName+"."+spec.Name] = describe(spec)
	}
	return structpb.NewStruct(out)
}

// createItem copies the recognized keys of entry onto a new item; other
// keys are ignored.
func (c *OrderBaseController) createItem(entry *structpb.Struct) *domain.OrderBaseItem {
	item := c.manager.CreateItem()
	for name, value := range entry.GetFields() {
		text, _ := scalar(value)
		switch name {
		case "order.base.id":
			item.BaseID = text
		case "order.base.comment":
			item.Comment = text
		case "order.base.customerid":
			item.CustomerID = text
		}
	}
	return item
}

// itemsByID reads ids back in the order the identifier query returns them.
func (c *OrderBaseController) itemsByID(ctx context.Context, site string, ids []string) ([]any, error) {
	if len(ids) == 0 {
		return []any{}, nil
	}
	siteCtx, err := c.locales.With(ctx, site, "", "")
	if err != nil {
		return nil, err
	}
	search := c.manager.CreateSearch()
	search.SetConditions(search.Compare(criteria.OpEqual, "order.base.id", ids))
	search.SetSlice(0, len(ids))
	items, _, err := c.manager.SearchItems(siteCtx, search)
	if err != nil {
		return nil, err
	}
	return toList(items), nil
}

func toList[T domain.Item](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToMap())
	}
	return out
}
