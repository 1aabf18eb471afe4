package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/storefront/internal/platform/config"
	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type renderFunc func(ctx context.Context, path string, v *view.View) (string, error)

func (f renderFunc) Render(ctx context.Context, path string, v *view.View) (string, error) {
	return f(ctx, path, v)
}

// tagRenderer renders template "<prefix>/<section>" as <prefix>children</prefix>.
var tagRenderer = renderFunc(func(_ context.Context, path string, v *view.View) (string, error) {
	prefix, section, _ := strings.Cut(path, "/")
	key := prefix + "Body"
	if section == "header" {
		key = prefix + "Header"
	}
	return "<" + prefix + ">" + view.Value(v, key, "") + "</" + prefix + ">", nil
})

type recorder struct {
	processed  []string
	viewParams map[string]int
}

type leafSpec struct {
	cacheable  bool
	processErr error
	paramsErr  error
}

func newTestDeps(t *testing.T, tree *config.Tree, leaves map[string]leafSpec, rec *recorder) (Deps, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.ErrorLevel)
	registry := NewRegistry()
	deps := Deps{Registry: registry, Config: tree, Logger: zap.New(core)}

	registry.Register("root", DefaultName, func(deps Deps) Client {
		return NewContainer(deps, "root", Options{
			Prefix:         "root",
			Subparts:       []string{"a", "b", "c"},
			HeaderTemplate: "root/header",
			BodyTemplate:   "root/body",
			ErrorList:      "rootErrorList",
			ViewParams: func(_ context.Context, v *view.View) error {
				rec.viewParams["root"]++
				v.Set("rootReady", true)
				return nil
			},
		})
	})
	for name, spec := range leaves {
		name, spec := name, spec
		registry.Register("root/"+name, DefaultName, func(deps Deps) Client {
			opts := Options{
				Prefix:         name,
				HeaderTemplate: name + "/header",
				BodyTemplate:   name + "/body",
				ViewParams: func(context.Context, *view.View) error {
					rec.viewParams[name]++
					return spec.paramsErr
				},
				Process: func(context.Context, *view.View) error {
					rec.processed = append(rec.processed, name)
					return spec.processErr
				},
			}
			if !spec.cacheable {
				opts.Cacheable = Never
			}
			return NewContainer(deps, "root/"+name, opts)
		})
	}
	return deps, logs
}

func newRecorder() *recorder {
	return &recorder{viewParams: map[string]int{}}
}

func newView(tree *config.Tree) *view.View {
	return view.New(view.Options{Config: tree, Renderer: tagRenderer})
}

func cacheableLeaves() map[string]leafSpec {
	return map[string]leafSpec{"a": {cacheable: true}, "b": {cacheable: true}, "c": {cacheable: true}}
}

func TestBodyConcatenatesSubClientsInConfiguredOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subparts []string
		want     string
	}{
		{name: "default order", want: "<root><a></a><b></b><c></c></root>"},
		{name: "configured order", subparts: []string{"c", "a", "b"}, want: "<root><c></c><a></a><b></b></root>"},
		{name: "configured subset", subparts: []string{"b"}, want: "<root><b></b></root>"},
		{name: "configured empty", subparts: []string{}, want: "<root></root>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := config.NewTree()
			if tt.subparts != nil {
				tree.Set("client/html/root/default/subparts", tt.subparts)
			}
			deps, _ := newTestDeps(t, tree, cacheableLeaves(), newRecorder())
			root, err := New(deps, "root", "")
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := root.Body(context.Background(), newView(tree))
			if err != nil {
				t.Fatalf("Body: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewCacheIsComputedOncePerRequest(t *testing.T) {
	t.Parallel()

	tree := config.NewTree()
	rec := newRecorder()
	deps, _ := newTestDeps(t, tree, cacheableLeaves(), rec)
	ctx := context.Background()

	first, err := New(deps, "root", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	firstView := newView(tree)
	if _, err := first.Header(ctx, firstView); err != nil {
		t.Fatalf("Header: %v", err)
	}
	if _, err := first.Body(ctx, firstView); err != nil {
		t.Fatalf("Body: %v", err)
	}
	container := first.(*Container)
	cachedA, _ := container.cache.View()
	again, err := container.View(ctx, firstView)
	if err != nil || again != cachedA {
		t.Fatalf("cached view changed within request: %p != %p (%v)", again, cachedA, err)
	}
	if diff := cmp.Diff(map[string]int{"root": 1, "a": 1, "b": 1, "c": 1}, rec.viewParams); diff != "" {
		t.Fatalf("view params calls mismatch (-want +got):\n%s", diff)
	}

	second, err := New(deps, "root", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	secondView := newView(tree)
	if _, err := second.Body(ctx, secondView); err != nil {
		t.Fatalf("Body: %v", err)
	}
	cachedB, _ := second.(*Container).cache.View()
	if cachedA == cachedB {
		t.Fatal("view cache leaked across requests")
	}
	if rec.viewParams["root"] != 2 {
		t.Fatalf("root view params = %d, want 2", rec.viewParams["root"])
	}
}

func TestCacheableRequiresEverySubClient(t *testing.T) {
	t.Parallel()

	tree := config.NewTree()
	deps, _ := newTestDeps(t, tree, cacheableLeaves(), newRecorder())
	root, _ := New(deps, "root", "")
	if !root.Cacheable(SectionBody) {
		t.Fatal("expected cacheable tree")
	}

	leaves := cacheableLeaves()
	leaves["b"] = leafSpec{cacheable: false}
	deps, _ = newTestDeps(t, tree, leaves, newRecorder())
	root, _ = New(deps, "root", "")
	if root.Cacheable(SectionBody) || root.Cacheable(SectionHeader) {
		t.Fatal("expected one non-cacheable sub-client to make the tree non-cacheable")
	}

	tree.Set("client/html/root/default/subparts", []string{"a", "c"})
	root, _ = New(deps, "root", "")
	if !root.Cacheable(SectionBody) {
		t.Fatal("expected tree without the non-cacheable sub-client to be cacheable")
	}

	never := NewContainer(deps, "root", Options{Cacheable: Never, Subparts: []string{"a"}})
	if never.Cacheable(SectionBody) {
		t.Fatal("expected node marked never-cacheable to report false")
	}
}

func TestProcessFailureInSubClientIsCaught(t *testing.T) {
	t.Parallel()

	tree := config.NewTree()
	rec := newRecorder()
	leaves := cacheableLeaves()
	leaves["b"] = leafSpec{processErr: apperrors.Presentation(apperrors.CodeClientConfig, "Template \"%s\" is not available", "b")}
	deps, _ := newTestDeps(t, tree, leaves, rec)
	root, _ := New(deps, "root", "")
	v := newView(tree)
	ctx := context.Background()

	if err := root.Process(ctx, v); err != nil {
		t.Fatalf("Process returned %v, want caught", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, rec.processed); diff != "" {
		t.Fatalf("processed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`Template "b" is not available`}, view.Value[[]string](v, "rootErrorList", nil)); diff != "" {
		t.Fatalf("error list mismatch (-want +got):\n%s", diff)
	}

	body, err := root.Body(ctx, v)
	if err != nil || body == "" {
		t.Fatalf("Body = %q, %v; want non-empty output", body, err)
	}
}

func TestBodyFailureRendersEmptyChildren(t *testing.T) {
	t.Parallel()

	tree := config.NewTree()
	leaves := cacheableLeaves()
	leaves["b"] = leafSpec{paramsErr: apperrors.Application(apperrors.CodeBasketEmpty, "Basket is empty")}
	deps, _ := newTestDeps(t, tree, leaves, newRecorder())
	root, _ := New(deps, "root", "")
	v := newView(tree)
	view.AppendErrors(v, "rootErrorList", "earlier")

	got, err := root.Body(context.Background(), v)
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if got != "<root></root>" {
		t.Fatalf("Body = %q, want empty children", got)
	}
	if diff := cmp.Diff([]string{"earlier", "Basket is empty"}, view.Value[[]string](v, "rootErrorList", nil)); diff != "" {
		t.Fatalf("error list mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaderFailureIsLoggedAndEmpty(t *testing.T) {
	t.Parallel()

	tree := config.NewTree()
	leaves := cacheableLeaves()
	leaves["c"] = leafSpec{paramsErr: errors.New("boom")}
	deps, logs := newTestDeps(t, tree, leaves, newRecorder())
	root, _ := New(deps, "root", "")
	v := newView(tree)

	got, err := root.Header(context.Background(), v)
	if err != nil || got != "" {
		t.Fatalf("Header = %q, %v; want empty", got, err)
	}
	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	if len(view.Value[[]string](v, "rootErrorList", nil)) != 0 {
		t.Fatal("header failures must not add to the error list")
	}
}

func TestCatchErrorClassifiesByKind(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	deps := Deps{Logger: zap.New(core)}
	v := view.New(view.Options{})

	codes := []apperrors.ErrorCode{{Section: "product", Key: "0", Code: "stock.notenough"}}
	err := errors.Join(
		apperrors.Presentation(apperrors.CodeInvalidServiceResponse, "Invalid process response from service provider with code \"%s\"", "paypal"),
		apperrors.Application(apperrors.CodeProductUnavailable, "Product with ID \"%s\" is not available", "p1"),
		apperrors.Plugin(apperrors.CodeBasketInvalid, "Basket content is invalid", codes),
		apperrors.DomainError(apperrors.CodeNotFound, "Item with ID \"%s\" not found", "x"),
		fmt.Errorf("database is locked"),
	)
	CatchError(deps, v, "standardErrorList", err)

	want := []string{
		`Invalid process response from service provider with code "paypal"`,
		`Product with ID "p1" is not available`,
		"Basket content is invalid",
		"Not enough products in stock",
		`Item with ID "x" not found`,
		GenericErrorMessage,
	}
	if diff := cmp.Diff(want, view.Value[[]string](v, "standardErrorList", nil)); diff != "" {
		t.Fatalf("error list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(codes, view.Value[[]apperrors.ErrorCode](v, ErrorCodesKey, nil)); diff != "" {
		t.Fatalf("error codes mismatch (-want +got):\n%s", diff)
	}
	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	if _, ok := logs.All()[0].ContextMap()["stack"]; !ok {
		t.Fatal("expected unclassified error to be logged with a stack trace")
	}
}

func TestRegistryCreate(t *testing.T) {
	t.Parallel()

	tree := config.NewTree()
	deps, _ := newTestDeps(t, tree, cacheableLeaves(), newRecorder())
	deps.Registry.Register("root/a", "compact", func(deps Deps) Client {
		return NewContainer(deps, "root/a", Options{Prefix: "compact"})
	})

	if _, err := New(deps, "root/missing", ""); apperrors.KindOf(err) != apperrors.KindPresentation {
		t.Fatalf("expected presentation error, got %v", err)
	}
	if _, err := New(deps, "root", "compact"); err == nil {
		t.Fatal("expected unknown name to fail")
	}

	tree.Set("client/html/root/a/name", "compact")
	root, _ := New(deps, "root", "")
	child, err := root.SubClient("a", "")
	if err != nil {
		t.Fatalf("SubClient: %v", err)
	}
	if got := child.(*Container).opts.Prefix; got != "compact" {
		t.Fatalf("configured name resolved prefix %q, want compact", got)
	}
}

func TestStepNeighbours(t *testing.T) {
	t.Parallel()

	steps := []string{"A", "B", "C", "D", "E"}
	tests := []struct {
		active       string
		wantPrevious string
		wantNext     string
	}{
		{active: "C", wantPrevious: "B", wantNext: "D"},
		{active: "A", wantPrevious: "", wantNext: "B"},
		{active: "E", wantPrevious: "D", wantNext: ""},
		{active: "X", wantPrevious: "", wantNext: ""},
	}
	for _, tt := range tests {
		previous, next := StepNeighbours(steps, tt.active)
		if previous != tt.wantPrevious || next != tt.wantNext {
			t.Fatalf("StepNeighbours(%s) = (%q, %q), want (%q, %q)", tt.active, previous, next, tt.wantPrevious, tt.wantNext)
		}
	}
}

func TestURLReadsDestinationConfig(t *testing.T) {
	t.Parallel()

	tree := config.NewTree()
	tree.Set("client/html/checkout/confirm/url/action", "done")
	v := view.New(view.Options{Config: tree, URLs: view.Routes{BaseURL: "https://shop.example.test"}})

	got := URL(v, "checkout/confirm", "checkout", "confirm", map[string]any{view.ConfigAbsoluteURI: true}, nil)
	if got != "https://shop.example.test/checkout/done" {
		t.Fatalf("URL = %q", got)
	}
	got = URL(v, "basket/standard", "basket", "index", nil, map[string]string{"b_action": "add"})
	if got != "/basket?b_action=add" {
		t.Fatalf("URL = %q", got)
	}
}
