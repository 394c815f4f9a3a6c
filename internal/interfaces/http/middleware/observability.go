package middleware

import "strings"

var unobservedPrefixes = []string{"/health", "/swagger"}

// skipObservability reports paths left out of traces, metrics and profiles.
func skipObservability(path string) bool {
	for _, p := range unobservedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// routeOf is the matched route template, or "unmatched".
func routeOf(fullPath string) string {
	if fullPath == "" {
		return "unmatched"
	}
	return fullPath
}
