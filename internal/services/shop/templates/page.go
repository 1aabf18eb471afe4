package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// AppName is appended to page titles.
const AppName = "Storefront"

// PageOptions describe a full storefront page.
type PageOptions struct {
	Title  string
	Lang   string
	Header string
	Body   string
}

// Page renders the HTML document around the client header and body.
func Page(opts PageOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := strings.TrimSpace(opts.Lang)
		if lang == "" {
			lang = "en-US"
		}
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="`+templ.EscapeString(lang)+`"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`+
			templ.EscapeString(ComposePageTitle(opts.Title))+`</title>`); err != nil {
			return err
		}
		if err := templ.Raw(opts.Header).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</head><body><main class="storefront">`); err != nil {
			return err
		}
		if err := templ.Raw(opts.Body).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// ComposePageTitle appends the application name unless title already ends
// with it.
func ComposePageTitle(title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return AppName
	case strings.HasSuffix(title, "| "+AppName):
		return title
	default:
		return title + " | " + AppName
	}
}

// Message renders a single notice, e.g. the order confirmation page.
func Message(heading, text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section class="notice"><h1>`+templ.EscapeString(heading)+`</h1><p>`+
			templ.EscapeString(text)+`</p></section>`)
		return err
	})
}
