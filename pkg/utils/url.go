package utils

import (
	"net/url"
	"strings"
)

// IsDoodURL reports whether input looks like a DoodStream video link: a
// well-formed absolute URL whose path uses the /e/ (embed) or /d/ (download
// page) convention.
func IsDoodURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return strings.Contains(u.Path, "/e/") || strings.Contains(u.Path, "/d/")
}

// NormalizeEmbedURL rewrites the /d/ page variant to the /e/ embed variant.
// The platform only serves the playable embed markup at the /e/ path.
func NormalizeEmbedURL(input string) string {
	return strings.Replace(input, "/d/", "/e/", 1)
}

// SplitURLList splits a comma-separated URL argument into trimmed non-empty
// entries.
func SplitURLList(input string) []string {
	parts := strings.Split(input, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}
