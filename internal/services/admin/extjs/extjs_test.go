package extjs

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/locale"
	"github.com/louisbranch/storefront/internal/services/shop/storage/sqlite"
	"google.golang.org/protobuf/types/known/structpb"
)

func newController(t *testing.T) (*OrderBaseController, *locale.Resolver, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.SeedDemo(context.Background(), "https://pay.example.test/start"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	locales := locale.NewResolver(store)
	controller, err := NewOrderBaseController(store.Orders(), locales)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return controller, locales, store
}

func mustStruct(t *testing.T, value map[string]any) *structpb.Struct {
	t.Helper()
	out, err := structpb.NewStruct(value)
	if err != nil {
		t.Fatalf("new struct: %v", err)
	}
	return out
}

func countOrderBases(t *testing.T, locales *locale.Resolver, store *sqlite.Store) int {
	t.Helper()
	ctx, err := locales.With(context.Background(), sqlite.DemoSiteCode, "", "")
	if err != nil {
		t.Fatalf("locale: %v", err)
	}
	manager := store.OrderBases()
	_, total, err := manager.SearchItems(ctx, manager.CreateSearch())
	if err != nil {
		t.Fatalf("search order bases: %v", err)
	}
	return total
}

func TestSaveItemsSingleReturnsObject(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)

	result, err := controller.SaveItems(context.Background(), mustStruct(t, map[string]any{
		"site": sqlite.DemoSiteCode,
		"items": map[string]any{
			"order.base.comment":    "gift wrap",
			"order.base.customerid": "u-1",
			"order.base.languageid": "de",
			"order.base.unknown":    "ignored",
		},
	}))
	if err != nil {
		t.Fatalf("save items: %v", err)
	}
	if !result.GetFields()["success"].GetBoolValue() {
		t.Fatal("expected success")
	}
	item := result.GetFields()["items"].GetStructValue()
	if item == nil {
		t.Fatalf("items = %v, want object", result.GetFields()["items"])
	}
	fields := item.GetFields()
	if fields["order.base.id"].GetStringValue() == "" {
		t.Fatal("expected generated id")
	}
	if got := fields["order.base.comment"].GetStringValue(); got != "gift wrap" {
		t.Fatalf("comment = %q", got)
	}
	if got := fields["order.base.customerid"].GetStringValue(); got != "u-1" {
		t.Fatalf("customerid = %q", got)
	}
	if got := fields["order.base.languageid"].GetStringValue(); got != "de" {
		t.Fatalf("languageid = %q, want de", got)
	}
	if _, ok := fields["order.base.unknown"]; ok {
		t.Fatal("unknown key must not be stored")
	}
}

func TestSaveItemsManyReturnsList(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)

	result, err := controller.SaveItems(context.Background(), mustStruct(t, map[string]any{
		"site": sqlite.DemoSiteCode,
		"items": []any{
			map[string]any{"order.base.comment": "first"},
			map[string]any{"order.base.comment": "second"},
		},
	}))
	if err != nil {
		t.Fatalf("save items: %v", err)
	}
	list := result.GetFields()["items"].GetListValue()
	if list == nil {
		t.Fatalf("items = %v, want list", result.GetFields()["items"])
	}
	var comments []string
	for _, value := range list.GetValues() {
		comments = append(comments, value.GetStructValue().GetFields()["order.base.comment"].GetStringValue())
	}
	if diff := cmp.Diff([]string{"first", "second"}, comments); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveItemsUpdatesExistingItem(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)
	ctx := context.Background()

	created, err := controller.SaveItems(ctx, mustStruct(t, map[string]any{
		"site":  sqlite.DemoSiteCode,
		"items": map[string]any{"order.base.comment": "draft"},
	}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.GetFields()["items"].GetStructValue().GetFields()["order.base.id"].GetStringValue()

	updated, err := controller.SaveItems(ctx, mustStruct(t, map[string]any{
		"site":  sqlite.DemoSiteCode,
		"items": map[string]any{"order.base.id": id, "order.base.comment": "final"},
	}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	fields := updated.GetFields()["items"].GetStructValue().GetFields()
	if fields["order.base.id"].GetStringValue() != id || fields["order.base.comment"].GetStringValue() != "final" {
		t.Fatalf("updated item = %v", fields)
	}
}

func TestSaveItemsReturnsQueryOrder(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)
	ctx := context.Background()

	ids := make(map[string]string)
	for _, comment := range []string{"a", "b"} {
		created, err := controller.SaveItems(ctx, mustStruct(t, map[string]any{
			"site":  sqlite.DemoSiteCode,
			"items": map[string]any{"order.base.comment": comment},
		}))
		if err != nil {
			t.Fatalf("create %s: %v", comment, err)
		}
		ids[comment] = created.GetFields()["items"].GetStructValue().GetFields()["order.base.id"].GetStringValue()
	}

	result, err := controller.SaveItems(ctx, mustStruct(t, map[string]any{
		"site": sqlite.DemoSiteCode,
		"items": []any{
			map[string]any{"order.base.id": ids["b"], "order.base.comment": "b2"},
			map[string]any{"order.base.id": ids["a"], "order.base.comment": "a2"},
		},
	}))
	if err != nil {
		t.Fatalf("save items: %v", err)
	}
	var comments []string
	for _, value := range result.GetFields()["items"].GetListValue().GetValues() {
		comments = append(comments, value.GetStructValue().GetFields()["order.base.comment"].GetStringValue())
	}
	if diff := cmp.Diff([]string{"a2", "b2"}, comments); diff != "" {
		t.Fatalf("comments mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveItemsEmptyListReturnsEmptyList(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)

	result, err := controller.SaveItems(context.Background(), mustStruct(t, map[string]any{
		"site":  sqlite.DemoSiteCode,
		"items": []any{},
	}))
	if err != nil {
		t.Fatalf("save items: %v", err)
	}
	list := result.GetFields()["items"].GetListValue()
	if list == nil || len(list.GetValues()) != 0 {
		t.Fatalf("items = %v, want empty list", result.GetFields()["items"])
	}
}

func TestSaveItemsRequiresParamsBeforeSaving(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params map[string]any
	}{
		{name: "missing site", params: map[string]any{"items": map[string]any{"order.base.comment": "x"}}},
		{name: "missing items", params: map[string]any{"site": sqlite.DemoSiteCode}},
		{name: "null site", params: map[string]any{"site": nil, "items": map[string]any{"order.base.comment": "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, locales, store := newController(t)
			_, err := controller.SaveItems(context.Background(), mustStruct(t, tt.params))
			appErr, ok := apperrors.As(err)
			if !ok || appErr.Kind != apperrors.KindValidation || appErr.Code != apperrors.CodeParamsMissing {
				t.Fatalf("err = %v, want params missing validation error", err)
			}
			if got := countOrderBases(t, locales, store); got != 0 {
				t.Fatalf("order bases = %d, want 0", got)
			}
		})
	}
}

func TestSaveItemsRejectsUnofferedCurrency(t *testing.T) {
	t.Parallel()
	controller, locales, store := newController(t)

	_, err := controller.SaveItems(context.Background(), mustStruct(t, map[string]any{
		"site":  sqlite.DemoSiteCode,
		"items": map[string]any{"order.base.currencyid": "USD"},
	}))
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if got := countOrderBases(t, locales, store); got != 0 {
		t.Fatalf("order bases = %d, want 0", got)
	}
}

func TestSearchItemsFiltersAndPages(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)
	ctx := context.Background()

	if _, err := controller.SaveItems(ctx, mustStruct(t, map[string]any{
		"site": sqlite.DemoSiteCode,
		"items": []any{
			map[string]any{"order.base.comment": "gift", "order.base.customerid": "u-1"},
			map[string]any{"order.base.comment": "plain", "order.base.customerid": "u-1"},
			map[string]any{"order.base.comment": "gift", "order.base.customerid": "u-2"},
		},
	})); err != nil {
		t.Fatalf("save items: %v", err)
	}

	result, err := controller.SearchItems(ctx, mustStruct(t, map[string]any{
		"site":   sqlite.DemoSiteCode,
		"filter": `comment = "gift"`,
		"start":  0,
		"limit":  1,
		"sort":   "order.base.customerid",
		"dir":    "DESC",
	}))
	if err != nil {
		t.Fatalf("search items: %v", err)
	}
	if got := result.GetFields()["total"].GetNumberValue(); got != 2 {
		t.Fatalf("total = %v, want 2", got)
	}
	items := result.GetFields()["items"].GetListValue().GetValues()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if got := items[0].GetStructValue().GetFields()["order.base.customerid"].GetStringValue(); got != "u-2" {
		t.Fatalf("customerid = %q, want u-2", got)
	}
}

func TestSearchItemsRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)

	tests := map[string]map[string]any{
		"bad filter": {"site": sqlite.DemoSiteCode, "filter": `price > 3`},
		"bad sort":   {"site": sqlite.DemoSiteCode, "sort": "order.base.secret"},
		"bad limit":  {"site": sqlite.DemoSiteCode, "limit": -1},
		"huge limit": {"site": sqlite.DemoSiteCode, "limit": 1e300},
		"huge start": {"site": sqlite.DemoSiteCode, "start": "99999999999"},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := controller.SearchItems(context.Background(), mustStruct(t, params))
			if apperrors.KindOf(err) != apperrors.KindValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestScalarKeepsLargeNumbersExact(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{
		42:      "42",
		1.5:     "1.5",
		1 << 53: "9007199254740992",
		1e300:   strconv.FormatFloat(1e300, 'f', -1, 64),
	}
	for in, want := range tests {
		got, ok := scalar(structpb.NewNumberValue(in))
		if !ok || got != want {
			t.Fatalf("scalar(%v) = (%q, %v), want %q", in, got, ok, want)
		}
	}
}

func TestDeleteItems(t *testing.T) {
	t.Parallel()
	controller, locales, store := newController(t)
	ctx := context.Background()

	saved, err := controller.SaveItems(ctx, mustStruct(t, map[string]any{
		"site":  sqlite.DemoSiteCode,
		"items": []any{map[string]any{"order.base.comment": "a"}, map[string]any{"order.base.comment": "b"}},
	}))
	if err != nil {
		t.Fatalf("save items: %v", err)
	}
	first := saved.GetFields()["items"].GetListValue().GetValues()[0].GetStructValue().GetFields()["order.base.id"].GetStringValue()

	if _, err := controller.DeleteItems(ctx, mustStruct(t, map[string]any{"site": sqlite.DemoSiteCode, "items": first})); err != nil {
		t.Fatalf("delete items: %v", err)
	}
	if got := countOrderBases(t, locales, store); got != 1 {
		t.Fatalf("order bases = %d, want 1", got)
	}
}

func TestDispatcherRoutesCommands(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)
	dispatcher := NewDispatcher(controller)

	result, err := dispatcher.Call(context.Background(), "Order_Base.saveItems", mustStruct(t, map[string]any{
		"site":  sqlite.DemoSiteCode,
		"items": map[string]any{"order.base.comment": "via dispatcher"},
	}))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !result.GetFields()["success"].GetBoolValue() {
		t.Fatal("expected success")
	}

	_, err = dispatcher.Call(context.Background(), "Order_Base.explode", nil)
	if appErr, ok := apperrors.As(err); !ok || appErr.Code != apperrors.CodeUnknownMethod {
		t.Fatalf("err = %v, want unknown method", err)
	}
}

func TestServiceDescription(t *testing.T) {
	t.Parallel()
	controller, _, _ := newController(t)

	description, err := NewDispatcher(controller).Describe()
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	save := description.GetFields()["Order_Base.saveItems"].GetStructValue()
	if save == nil {
		t.Fatalf("description = %v", description)
	}
	var names []string
	for _, param := range save.GetFields()["parameters"].GetListValue().GetValues() {
		fields := param.GetStructValue().GetFields()
		if fields["optional"].GetBoolValue() {
			t.Fatalf("saveItems parameter %v must be required", fields["name"])
		}
		names = append(names, fields["name"].GetStringValue())
	}
	if diff := cmp.Diff([]string{"site", "items"}, names); diff != "" {
		t.Fatalf("parameters mismatch (-want +got):\n%s", diff)
	}

	own, err := controller.GetServiceDescription(context.Background(), nil)
	if err != nil {
		t.Fatalf("get service description: %v", err)
	}
	if diff := cmp.Diff(len(description.GetFields()), len(own.GetFields())); diff != "" {
		t.Fatalf("method count mismatch (-want +got):\n%s", diff)
	}
}
