package release

import (
	"net/url"
	"strings"
)

// NormalizeURLs resolves relative links against base, drops fragments-only
// and javascript links, and deduplicates while preserving order.
func NormalizeURLs(urls []string, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = nil
	}

	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "javascript:") || strings.HasPrefix(raw, "mailto:") {
			continue
		}
		resolved := raw
		if baseURL != nil {
			if ref, err := url.Parse(raw); err == nil {
				resolved = baseURL.ResolveReference(ref).String()
			}
		}
		if !strings.HasPrefix(resolved, "http://") && !strings.HasPrefix(resolved, "https://") {
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	return out
}

// BaseOf reduces a URL to its scheme://host origin, for resolving
// root-relative links.
func BaseOf(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawurl
	}
	return u.Scheme + "://" + u.Host
}
