package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// html writes markup and keeps the first write error.
type html struct {
	w   io.Writer
	v   *view.View
	err error
}

func (h *html) raw(s string) {
	if h.err != nil || s == "" {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// t writes a translated UI label.
func (h *html) t(msg string, args ...any) {
	h.text(h.v.Translate("client", msg, args...))
}

func (h *html) attr(name, value string) {
	h.raw(" " + name + `="`)
	h.text(value)
	h.raw(`"`)
}

func (h *html) hidden(name, value string) {
	h.raw(`<input type="hidden"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(">")
}

// errors writes the error list stored under key, if any.
func (h *html) errors(key string) {
	h.list(view.Value[[]string](h.v, key, nil))
}

func (h *html) list(messages []string) {
	if len(messages) == 0 {
		return
	}
	h.raw(`<ul class="error-list">`)
	for _, msg := range messages {
		h.raw("<li>")
		h.text(msg)
		h.raw("</li>")
	}
	h.raw("</ul>")
}

// component adapts a writer function to a templ component.
func component(v *view.View, write func(h *html)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &html{w: w, v: v}
		write(h)
		return h.err
	})
}

// children renders the sub-client output stored under key.
func children(key string) Template {
	return func(v *view.View) templ.Component {
		return component(v, func(h *html) {
			h.raw(view.Value(v, key, ""))
		})
	}
}
