// Package view holds the per-request key/value bag shared by the HTML client
// tree.
//
// A View is created once per request and passed by pointer to every client
// node. Nodes read values written by their ancestors and add their own
// before rendering templates against it.
package view

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/config"
	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/i18n"
)

// Renderer renders the template stored under path against a view.
type Renderer interface {
	Render(ctx context.Context, path string, v *View) (string, error)
}

// URLBuilder builds shop URLs from a target, controller and action.
type URLBuilder interface {
	URL(target, controller, action string, params map[string]string, trailing []string, options map[string]any) string
}

// Options configures a new view.
type Options struct {
	Config     config.Provider
	Params     url.Values
	URLs       URLBuilder
	Renderer   Renderer
	Translator i18n.Translator
}

// View is the request-scoped property bag.
type View struct {
	values     map[string]any
	config     config.Provider
	params     url.Values
	urls       URLBuilder
	renderer   Renderer
	translator i18n.Translator
}

// New returns an empty view.
func New(opts Options) *View {
	translator := opts.Translator
	if translator == nil {
		translator = i18n.NewTranslator(nil, i18n.Default())
	}
	urls := opts.URLs
	if urls == nil {
		urls = Routes{}
	}
	params := opts.Params
	if params == nil {
		params = url.Values{}
	}
	return &View{
		values:     map[string]any{},
		config:     opts.Config,
		params:     params,
		urls:       urls,
		renderer:   opts.Renderer,
		translator: translator,
	}
}

// Get returns the value stored under key or fallback.
func (v *View) Get(key string, fallback any) any {
	if value, ok := v.values[key]; ok {
		return value
	}
	return fallback
}

// Has reports whether key was set.
func (v *View) Has(key string) bool {
	_, ok := v.values[key]
	return ok
}

// Set stores value under key, replacing any previous value.
func (v *View) Set(key string, value any) {
	v.values[key] = value
}

// Keys returns the set keys in sorted order.
func (v *View) Keys() []string {
	keys := make([]string, 0, len(v.values))
	for key := range v.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the value under key when it has type T, else fallback.
func Value[T any](v *View, key string, fallback T) T {
	if v == nil {
		return fallback
	}
	if value, ok := v.values[key].(T); ok {
		return value
	}
	return fallback
}

// Render renders the template at path against the view.
func (v *View) Render(ctx context.Context, path string) (string, error) {
	if v.renderer == nil {
		return "", apperrors.Presentation(apperrors.CodeClientTemplate, "Template \"%s\" is not available", path)
	}
	return v.renderer.Render(ctx, path, v)
}

// Config returns the configuration value under key or fallback.
func (v *View) Config(key string, fallback any) any {
	if v.config == nil {
		return fallback
	}
	if value, ok := v.config.Get(key); ok && value != nil {
		return value
	}
	return fallback
}

// ConfigString returns the string configured under key.
func (v *View) ConfigString(key, fallback string) string {
	return config.String(v.config, key, fallback)
}

// ConfigStrings returns the list configured under key.
func (v *View) ConfigStrings(key string, fallback []string) []string {
	return config.Strings(v.config, key, fallback)
}

// ConfigMap returns the map configured under key.
func (v *View) ConfigMap(key string, fallback map[string]any) map[string]any {
	return config.Map(v.config, key, fallback)
}

// ConfigProvider returns the configuration the view reads from.
func (v *View) ConfigProvider() config.Provider {
	return v.config
}

// Param returns the request parameter under key or fallback.
func (v *View) Param(key, fallback string) string {
	if values, ok := v.params[key]; ok && len(values) > 0 {
		return values[0]
	}
	return fallback
}

// Params returns all values of the request parameter under key.
func (v *View) Params(key string) []string {
	return append([]string(nil), v.params[key]...)
}

// URL builds a shop URL.
func (v *View) URL(target, controller, action string, params map[string]string, trailing []string, options map[string]any) string {
	return v.urls.URL(target, controller, action, params, trailing, options)
}

// Translate returns msg translated within domain.
func (v *View) Translate(domain, msg string, args ...any) string {
	return v.translator.DT(domain, msg, args...)
}

// Translator returns the view translator.
func (v *View) Translator() i18n.Translator {
	return v.translator
}

// AppendErrors adds messages to the error list under key, keeping the
// entries already present.
func AppendErrors(v *View, key string, messages ...string) {
	current := Value[[]string](v, key, nil)
	list := make([]string, 0, len(current)+len(messages))
	list = append(list, current...)
	for _, msg := range messages {
		if strings.TrimSpace(msg) != "" {
			list = append(list, msg)
		}
	}
	v.Set(key, list)
}
