// Package templates renders the storefront client templates with templ.
package templates

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/a-h/templ"
	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// Template builds the component for a template path from the view.
type Template func(v *view.View) templ.Component

// Engine resolves template paths such as "checkout/standard/body-default"
// to components.
type Engine struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewEngine returns an engine with the default storefront templates.
func NewEngine() *Engine {
	e := &Engine{templates: map[string]Template{}}
	registerCheckout(e)
	registerCatalog(e)
	registerBasket(e)
	return e
}

// Register adds or replaces the template at path.
func (e *Engine) Register(path string, template Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[strings.Trim(path, "/")] = template
}

// Render implements view.Renderer.
func (e *Engine) Render(ctx context.Context, path string, v *view.View) (string, error) {
	e.mu.RLock()
	template, ok := e.templates[strings.Trim(path, "/")]
	e.mu.RUnlock()
	if !ok {
		return "", apperrors.Presentation(apperrors.CodeClientTemplate, "Template \"%s\" is not available", path)
	}
	var buf bytes.Buffer
	if err := template(v).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var _ view.Renderer = (*Engine)(nil)
