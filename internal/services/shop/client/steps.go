package client

import (
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// StepNeighbours returns the steps before and after active. previous is
// empty when active is the first step or not listed; next is empty when
// active is the last step or not listed.
func StepNeighbours(steps []string, active string) (previous, next string) {
	for i, step := range steps {
		if step != active {
			continue
		}
		if i > 0 {
			previous = steps[i-1]
		}
		if i+1 < len(steps) {
			next = steps[i+1]
		}
		return previous, next
	}
	return "", ""
}

// URL builds the URL of a destination such as "checkout/standard" from
// client/html/<dest>/url/{target,controller,action,config}, using the given
// defaults when a key is not configured.
func URL(v *view.View, dest, controller, action string, options map[string]any, params map[string]string) string {
	prefix := "client/html/" + dest + "/url/"
	return v.URL(
		v.ConfigString(prefix+"target", ""),
		v.ConfigString(prefix+"controller", controller),
		v.ConfigString(prefix+"action", action),
		params,
		nil,
		v.ConfigMap(prefix+"config", options),
	)
}
