package domain

import (
	"net/url"
	"strings"
)

const searchBase = "https://www.google.com/search?q="

// SearchURL builds the redirect target for a search box query. It reports
// false for queries that are blank after trimming.
func SearchURL(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "", false
	}
	return searchBase + encodeComponent(query), true
}

var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes s the way browsers escape a single URI component.
func encodeComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}
