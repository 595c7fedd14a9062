package httpmetrics

import "github.com/AlibekovAA/rhythmix/backend/internal/common/constants"

// UnmatchedPath labels every request outside the served routes.
const UnmatchedPath = "unmatched"

var knownRoutes = map[string]struct{}{
	constants.RouteHealth:      {},
	constants.RouteMetrics:     {},
	constants.RouteRegister:    {},
	constants.RouteUsers:       {},
	constants.RouteUsersLegacy: {},
}

// NormalizePath maps a request path to its metric label: the route itself
// when served, UnmatchedPath otherwise.
func NormalizePath(path string) string {
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return UnmatchedPath
}
