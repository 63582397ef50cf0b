// Package hub manages event subscriptions: callback registrations scoped
// by the service group derived from the registering request's path.
package hub

import "strings"

// ServiceGroup derives the subscription partition key from a request
// path. The first three non-empty segments are joined with "/", which for
// a well-formed request yields "{componentName}/{apiName}/{version}".
// Shorter paths produce a shorter key; the value is a partition key only
// and is never validated against a schema.
func ServiceGroup(path string) string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		parts = append(parts, part)
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, "/")
}
