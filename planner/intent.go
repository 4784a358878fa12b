package planner

import "strings"

// Intent classifies what a browser automation request is trying to do.
type Intent string

const (
	IntentSearch   Intent = "search"
	IntentAuth     Intent = "auth"
	IntentCart     Intent = "cart"
	IntentNavigate Intent = "navigate"
	IntentGeneric  Intent = "generic"
)

// InferIntent buckets a request by keyword. The executor uses the intent
// only for reporting; the step plan drives execution.
func InferIntent(request string) Intent {
	q := strings.ToLower(request)
	switch {
	case containsAny(q, "search", "find", "look for"):
		return IntentSearch
	case containsAny(q, "login", "sign in", "username", "password"):
		return IntentAuth
	case containsAny(q, "cart", "wishlist"):
		return IntentCart
	case containsAny(q, "go to", "navigate", "open "):
		return IntentNavigate
	default:
		return IntentGeneric
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
