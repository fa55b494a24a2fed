package providers

import (
	"errors"
	"regexp"
	"strings"
)

// ErrPassMD5NotFound means the embed page carried no /pass_md5/ path: either
// the page layout changed or the video was removed. Callers decide what to
// do with it, the resolver never retries on its own.
var ErrPassMD5NotFound = errors.New("pass_md5 path not found in embed page")

var (
	// The path is embedded in arbitrary script/attribute noise, so this is a
	// substring scan, not an HTML parse. The match runs up to the closing
	// quote of whatever string literal holds the path.
	passMD5Re = regexp.MustCompile(`/pass_md5/([^"']+)`)

	// A tolerant scan is enough for <title>: a missing or mangled element
	// only degrades the output filename to the token fallback.
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

	illegalFilenameRe = regexp.MustCompile(`[\\/*?:"<>|]`)
)

// extractPassMD5 pulls the opaque pass_md5 path out of raw embed-page markup.
func extractPassMD5(markup string) (string, error) {
	m := passMD5Re.FindStringSubmatch(markup)
	if m == nil {
		return "", ErrPassMD5NotFound
	}
	return m[1], nil
}

// extractTitle returns the sanitized document title, or the sanitized
// fallback when the markup has no usable <title> element.
func extractTitle(markup string, fallback string) string {
	title := fallback
	if m := titleRe.FindStringSubmatch(markup); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			title = t
		}
	}
	return SanitizeFilename(title)
}

// SanitizeFilename strips the characters that are illegal in filenames on
// common filesystems.
func SanitizeFilename(name string) string {
	return illegalFilenameRe.ReplaceAllString(name, "")
}
