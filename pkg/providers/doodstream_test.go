package providers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title></head>
<body>
<script>
  $.get('/pass_md5/abc123/xyz', function(data) { makePlay(data); });
</script>
</body>
</html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBackend(t *testing.T, passCalls *int32) (*httptest.Server, *string) {
	t.Helper()

	var gotReferer string
	mux := http.NewServeMux()
	mux.HandleFunc("/e/abc123", func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		_, _ = io.WriteString(w, samplePage)
	})
	mux.HandleFunc("/e/untitled", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><script>x = '/pass_md5/abc123/xyz';</script></html>`)
	})
	mux.HandleFunc("/e/static", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><title>No Media</title></html>`)
	})
	mux.HandleFunc("/e/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/pass_md5/abc123/xyz", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(passCalls, 1)
		_, _ = io.WriteString(w, "https://cdn.example/media/\n")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &gotReferer
}

var finalURLRe = regexp.MustCompile(`^https://cdn\.example/media/([A-Za-z0-9]{10})\?token=xyz&expiry=(\d+)$`)

func TestResolveEndToEnd(t *testing.T) {
	var passCalls int32
	srv, gotReferer := newTestBackend(t, &passCalls)

	p := &DoodStream{Client: http.DefaultClient, Log: discardLogger()}

	embedURL := srv.URL + "/e/abc123"
	res, err := p.Resolve(embedURL)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	m := finalURLRe.FindStringSubmatch(res.DownloadURL)
	if m == nil {
		t.Fatalf("final URL %q does not match expected pattern", res.DownloadURL)
	}

	expiry, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		t.Fatalf("parsing expiry: %v", err)
	}
	now := time.Now().Unix()
	if expiry < now-2 || expiry > now+2 {
		t.Errorf("expiry %d not within 2s of now %d", expiry, now)
	}

	if res.Title != "Sample" {
		t.Errorf("title = %q, want %q", res.Title, "Sample")
	}
	if res.Token != "xyz" {
		t.Errorf("token = %q, want %q", res.Token, "xyz")
	}
	if *gotReferer != embedURL {
		t.Errorf("embed request Referer = %q, want %q", *gotReferer, embedURL)
	}
	if atomic.LoadInt32(&passCalls) != 1 {
		t.Errorf("pass_md5 endpoint hit %d times, want 1", passCalls)
	}
}

func TestResolveNormalizesDownloadPath(t *testing.T) {
	var passCalls int32
	srv, _ := newTestBackend(t, &passCalls)

	p := &DoodStream{Client: http.DefaultClient, Log: discardLogger()}

	// The backend only serves /e/; a /d/ link must be rewritten before the
	// fetch or this returns 404.
	res, err := p.Resolve(srv.URL + "/d/abc123")
	if err != nil {
		t.Fatalf("Resolve with /d/ URL: %v", err)
	}
	if res.Token != "xyz" {
		t.Errorf("token = %q, want %q", res.Token, "xyz")
	}
}

func TestResolveTitleFallsBackToToken(t *testing.T) {
	var passCalls int32
	srv, _ := newTestBackend(t, &passCalls)

	p := &DoodStream{Client: http.DefaultClient, Log: discardLogger()}

	res, err := p.Resolve(srv.URL + "/e/untitled")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Title != "xyz" {
		t.Errorf("title = %q, want token fallback %q", res.Title, "xyz")
	}
}

func TestResolveMissingPassMD5(t *testing.T) {
	var passCalls int32
	srv, _ := newTestBackend(t, &passCalls)

	p := &DoodStream{Client: http.DefaultClient, Log: discardLogger()}

	_, err := p.Resolve(srv.URL + "/e/static")
	if !errors.Is(err, ErrPassMD5NotFound) {
		t.Fatalf("expected ErrPassMD5NotFound, got %v", err)
	}
	if atomic.LoadInt32(&passCalls) != 0 {
		t.Errorf("pass_md5 endpoint hit %d times after extraction failure, want 0", passCalls)
	}
}

func TestResolveBadStatus(t *testing.T) {
	var passCalls int32
	srv, _ := newTestBackend(t, &passCalls)

	p := &DoodStream{Client: http.DefaultClient, Log: discardLogger()}

	_, err := p.Resolve(srv.URL + "/e/gone")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}
}

func TestResolveInvalidURL(t *testing.T) {
	p := &DoodStream{Client: http.DefaultClient, Log: discardLogger()}
	if _, err := p.Resolve("not-a-url"); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestRandomSuffixAlphabet(t *testing.T) {
	re := regexp.MustCompile(`^[A-Za-z0-9]{10}$`)
	for i := 0; i < 50; i++ {
		s := randomSuffix(10)
		if !re.MatchString(s) {
			t.Fatalf("suffix %q is not 10 alphanumeric chars", s)
		}
	}
}
