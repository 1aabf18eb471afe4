// Package client composes storefront pages from a tree of HTML client nodes.
//
// Every node renders a header and a body section. It resolves its configured
// sub-clients, lets each of them render into the shared per-request view,
// stores the concatenated output under a node-scoped key and renders its own
// template. Nodes are created per request through a Registry, so the view
// cache a node keeps is never shared between requests.
package client

import (
	"context"

	"github.com/louisbranch/storefront/internal/platform/config"
	"github.com/louisbranch/storefront/internal/services/shop/domain"
	"github.com/louisbranch/storefront/internal/services/shop/frontend"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Section names a rendered part of a page.
type Section string

const (
	SectionHeader Section = "header"
	SectionBody   Section = "body"
)

// Client is one node of the HTML client tree.
type Client interface {
	// Header returns the HTML for the page head.
	Header(ctx context.Context, v *view.View) (string, error)
	// Body returns the HTML for the page body.
	Body(ctx context.Context, v *view.View) (string, error)
	// Cacheable reports whether the section output of the node and all of
	// its sub-clients may be cached across requests.
	Cacheable(section Section) bool
	// Process applies the request to the session before rendering.
	Process(ctx context.Context, v *view.View) error
	// SubClient creates the sub-client of typ with name below this node.
	SubClient(typ, name string) (Client, error)
}

// Deps are the collaborators shared by all nodes of a tree.
type Deps struct {
	Registry *Registry
	Config   config.Provider
	Logger   *zap.Logger
	Tracer   trace.Tracer

	Baskets  frontend.Baskets
	Orders   frontend.Orders
	Catalog  frontend.Catalog
	Services domain.ServiceManager
}

// New creates the root client at path with name from deps.Registry.
func New(deps Deps, path, name string) (Client, error) {
	return deps.Registry.Create(deps, path, name)
}

// Never reports every section as non-cacheable.
func Never(Section) bool { return false }
