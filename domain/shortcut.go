package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ShortcutLimit is the number of shortcuts shown on the page.
const ShortcutLimit = 8

// FallbackFavicon is served when a shortcut URL cannot be parsed.
const FallbackFavicon = "favicon.ico"

// Shortcut is a bookmark tile.
type Shortcut struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the server-assigned id.
func (s Shortcut) Key() string { return s.ID }

// ShortcutPatch carries the fields of a shortcut to change.
type ShortcutPatch struct {
	Name *string `json:"name,omitempty"`
	URL  *string `json:"url,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ShortcutPatch) Empty() bool {
	return p.Name == nil && p.URL == nil
}

// ApplyShortcutPatch returns s with the patch fields copied over.
func ApplyShortcutPatch(s Shortcut, p ShortcutPatch) Shortcut {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.URL != nil {
		s.URL = NormalizeURL(*p.URL)
	}
	return s
}

// ShortcutOrder is how the shortcut row is read: newest first, capped.
var ShortcutOrder = Order{Field: FieldCreatedAt, Descending: true, Limit: ShortcutLimit}

// NormalizeURL turns a bare host into an https URL. Anything already starting
// with "http" is returned as is.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return "https://" + raw
}

// PrepareShortcut validates a new shortcut and normalizes its URL.
func PrepareShortcut(s Shortcut) (Shortcut, error) {
	if strings.TrimSpace(s.Name) == "" {
		return Shortcut{}, fmt.Errorf("name: %w", ErrBlankField)
	}
	if strings.TrimSpace(s.URL) == "" {
		return Shortcut{}, fmt.Errorf("url: %w", ErrBlankField)
	}
	return Shortcut{Name: s.Name, URL: NormalizeURL(s.URL)}, nil
}

// FaviconURL returns the favicon service address for the host of raw.
func FaviconURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return FallbackFavicon
	}
	return "https://www.google.com/s2/favicons?domain=" + u.Hostname() + "&sz=32"
}
