package models

// ResolveResult is the outcome of resolving an embed page: a time-limited
// direct link plus a filesystem-safe title. The link carries an expiry
// stamped at resolution time, so it must be consumed promptly.
type ResolveResult struct {
	Title       string
	DownloadURL string
	// Token is the trailing segment of the pass_md5 path, echoed back to the
	// backend as a query parameter. Doubles as the title fallback.
	Token string
}

// DownloadTarget describes a single transfer: where to fetch from and where
// to write. The expected size comes from the response headers at fetch time.
type DownloadTarget struct {
	URL  string
	Path string
}

type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Title   string `json:"title,omitempty"`
	// DirectURL - the expiring direct link to the CDN (resolve-only requests)
	DirectURL string `json:"direct_url,omitempty"`
	// StreamURL - link to internal API to download a locally saved file
	StreamURL string `json:"stream_url,omitempty"`
	// LocalPath - absolute path (for local integrations)
	LocalPath string `json:"local_path,omitempty"`
}
