package client

import (
	"context"
	"errors"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/config"
	"github.com/louisbranch/storefront/internal/platform/logging"
	platformotel "github.com/louisbranch/storefront/internal/platform/otel"
	"github.com/louisbranch/storefront/internal/services/shop/view"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options describe one node kind.
type Options struct {
	// Prefix scopes the view keys the node writes, e.g. "standard" for
	// standardHeader and standardBody.
	Prefix string
	// Subparts are the sub-client names used when
	// client/html/<path>/default/subparts is not configured.
	Subparts []string
	// HeaderTemplate and BodyTemplate are the template paths used when
	// client/html/<path>/default/template-{header,body} is not configured.
	HeaderTemplate string
	BodyTemplate   string
	// ViewParams enriches the view once per request before rendering.
	ViewParams func(ctx context.Context, v *view.View) error
	// Process is the node's own side effect, run before its sub-clients.
	Process func(ctx context.Context, v *view.View) error
	// Cacheable reports the node's own cacheability; nil means cacheable.
	Cacheable func(Section) bool
	// ErrorList makes the node catch errors of its subtree into the view
	// list with this key instead of returning them.
	ErrorList string
}

// Container implements Client for a node described by Options. Node
// packages embed it and override methods where a node needs more.
type Container struct {
	deps Deps
	path string
	opts Options

	cache    Cache
	children []Client
	resolved bool
}

// NewContainer returns a node at path.
func NewContainer(deps Deps, path string, opts Options) *Container {
	return &Container{deps: deps, path: normalizePath(path), opts: opts}
}

// Path returns the node path, e.g. "checkout/standard".
func (c *Container) Path() string { return c.path }

// Deps returns the node collaborators.
func (c *Container) Deps() Deps { return c.deps }

// SubpartKey returns the configuration key listing the sub-client names.
func (c *Container) SubpartKey() string {
	return "client/html/" + c.path + "/default/subparts"
}

// SubpartNames returns the configured sub-client names in order.
func (c *Container) SubpartNames() []string {
	return config.Strings(c.deps.Config, c.SubpartKey(), c.opts.Subparts)
}

// SubClients returns the configured sub-clients, created once per node.
func (c *Container) SubClients() ([]Client, error) {
	if c.resolved {
		return c.children, nil
	}
	names := c.SubpartNames()
	children := make([]Client, 0, len(names))
	for _, name := range names {
		child, err := c.SubClient(name, "")
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	c.children, c.resolved = children, true
	return children, nil
}

// SubClient implements Client.
func (c *Container) SubClient(typ, name string) (Client, error) {
	return c.deps.Registry.Create(c.deps, c.path+"/"+strings.Trim(typ, "/"), name)
}

// View returns the view enriched by ViewParams, computed once per node.
func (c *Container) View(ctx context.Context, v *view.View) (*view.View, error) {
	return c.cache.Resolve(v, func(v *view.View) (*view.View, error) {
		if c.opts.ViewParams == nil {
			return v, nil
		}
		if err := c.opts.ViewParams(ctx, v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// Header implements Client. Catching nodes log failures and return an
// empty header.
func (c *Container) Header(ctx context.Context, v *view.View) (string, error) {
	ctx, span := c.startSpan(ctx, "header")
	defer span.End()

	html, err := c.render(ctx, v, SectionHeader)
	if err == nil || c.opts.ErrorList == "" {
		return html, err
	}
	span.RecordError(err)
	logging.OrNop(c.deps.Logger).Error("render client header",
		zap.String("client", c.path), zap.Error(err), zap.Stack("stack"))
	return "", nil
}

// Body implements Client. Catching nodes add failures to their error list
// and render their template with an empty sub-client body.
func (c *Container) Body(ctx context.Context, v *view.View) (string, error) {
	ctx, span := c.startSpan(ctx, "body")
	defer span.End()

	html, err := c.render(ctx, v, SectionBody)
	if err == nil || c.opts.ErrorList == "" {
		return html, err
	}
	span.RecordError(err)
	CatchError(c.deps, v, c.opts.ErrorList, err)
	v.Set(c.opts.Prefix+"Body", "")
	html, err = v.Render(ctx, c.Template(SectionBody))
	if err != nil {
		CatchError(c.deps, v, c.opts.ErrorList, err)
		return "", nil
	}
	return html, nil
}

// Process implements Client: the node's own side effect runs first, then
// every sub-client in render order.
func (c *Container) Process(ctx context.Context, v *view.View) error {
	ctx, span := c.startSpan(ctx, "process")
	defer span.End()

	err := c.process(ctx, v)
	if err == nil || c.opts.ErrorList == "" {
		return err
	}
	span.RecordError(err)
	CatchError(c.deps, v, c.opts.ErrorList, err)
	return nil
}

func (c *Container) process(ctx context.Context, v *view.View) error {
	if c.opts.Process != nil {
		if err := c.opts.Process(ctx, v); err != nil {
			return err
		}
	}
	return c.ProcessSubClients(ctx, v)
}

// ProcessSubClients processes every sub-client even when an earlier one
// fails and returns the joined failures.
func (c *Container) ProcessSubClients(ctx context.Context, v *view.View) error {
	children, err := c.SubClients()
	if err != nil {
		return err
	}
	var errs []error
	for _, child := range children {
		if err := child.Process(ctx, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cacheable implements Client.
func (c *Container) Cacheable(section Section) bool {
	if c.opts.Cacheable != nil && !c.opts.Cacheable(section) {
		return false
	}
	children, err := c.SubClients()
	if err != nil {
		return false
	}
	for _, child := range children {
		if !child.Cacheable(section) {
			return false
		}
	}
	return true
}

// Template returns the configured template path for section.
func (c *Container) Template(section Section) string {
	fallback := c.opts.BodyTemplate
	if section == SectionHeader {
		fallback = c.opts.HeaderTemplate
	}
	return config.String(c.deps.Config, "client/html/"+c.path+"/default/template-"+string(section), fallback)
}

// RenderSubClients renders section of every sub-client in order and returns
// the concatenation.
func (c *Container) RenderSubClients(ctx context.Context, v *view.View, section Section) (string, error) {
	children, err := c.SubClients()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, child := range children {
		var html string
		if section == SectionHeader {
			html, err = child.Header(ctx, v)
		} else {
			html, err = child.Body(ctx, v)
		}
		if err != nil {
			return "", err
		}
		b.WriteString(html)
	}
	return b.String(), nil
}

func (c *Container) render(ctx context.Context, v *view.View, section Section) (string, error) {
	enriched, err := c.View(ctx, v)
	if err != nil {
		return "", err
	}
	html, err := c.RenderSubClients(ctx, enriched, section)
	if err != nil {
		return "", err
	}
	suffix := "Body"
	if section == SectionHeader {
		suffix = "Header"
	}
	enriched.Set(c.opts.Prefix+suffix, html)
	return enriched.Render(ctx, c.Template(section))
}

func (c *Container) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	tracer := c.deps.Tracer
	if tracer == nil {
		tracer = platformotel.Tracer("shop/client")
	}
	return tracer.Start(ctx, "client."+op, trace.WithAttributes(attribute.String("client.path", c.path)))
}

var _ Client = (*Container)(nil)
