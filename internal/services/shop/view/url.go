package view

import (
	"net/url"
	"path"
	"strings"
)

// ConfigAbsoluteURI is the URL option requesting an absolute URL.
const ConfigAbsoluteURI = "absoluteUri"

// Routes builds URLs of the form [base]/<target|controller>[/<action>][/trailing...][?params].
// The "index" action is omitted.
type Routes struct {
	// BaseURL prefixes URLs built with the absoluteUri option.
	BaseURL string
}

// URL implements URLBuilder.
func (r Routes) URL(target, controller, action string, params map[string]string, trailing []string, options map[string]any) string {
	segments := []string{}
	if target = strings.Trim(target, "/"); target != "" {
		segments = append(segments, target)
	} else if controller = strings.Trim(controller, "/"); controller != "" {
		segments = append(segments, controller)
	}
	if action != "" && action != "index" {
		segments = append(segments, url.PathEscape(action))
	}
	for _, part := range trailing {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, url.PathEscape(part))
		}
	}
	built := path.Clean("/" + strings.Join(segments, "/"))

	if len(params) > 0 {
		query := url.Values{}
		for key, value := range params {
			query.Set(key, value)
		}
		built += "?" + query.Encode()
	}
	if absolute, _ := options[ConfigAbsoluteURI].(bool); absolute && r.BaseURL != "" {
		built = strings.TrimRight(r.BaseURL, "/") + built
	}
	return built
}
