package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/forPelevin/heatclip/internal/ports"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=x", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/abcDEF_123-", "abcDEF_123-"},
	}
	for _, tt := range tests {
		got, err := VideoID(tt.in)
		if err != nil {
			t.Fatalf("VideoID(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("VideoID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVideoID_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"not a url",
		"https://vimeo.com/12345678",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/channel/abcdefgh",
		"https://youtu.be/",
		"https://youtu.be/bad;id$(rm)",
		"https://youtu.be/dQw4w9WgXc",
		"https://youtu.be/dQw4w9WgXcQQ",
		"https://www.youtube.com/watch?v=abcdef",
	} {
		if _, err := VideoID(in); !errors.Is(err, ports.ErrInvalidSource) {
			t.Fatalf("VideoID(%q): expected ErrInvalidSource, got %v", in, err)
		}
	}
}

func testAdapter(t *testing.T, h http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL)
	a, err := New(srv.URL, []string{u.Hostname()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a.WithHTTPClient(srv.Client())
}

func TestFetchPage(t *testing.T) {
	a := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/watch" || r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(`<html>"markers":[]</html>`))
	})
	page, err := a.FetchPage(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if !strings.Contains(page, `"markers"`) {
		t.Fatalf("unexpected page: %q", page)
	}
}

func TestFetchPage_HTTPError(t *testing.T) {
	a := testAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 1000), http.StatusTooManyRequests)
	})
	_, err := a.FetchPage(context.Background(), "dQw4w9WgXcQ")
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("expected status error, got %v", err)
	}
	if len(err.Error()) > 400 {
		t.Fatalf("error body should be truncated, got %d bytes", len(err.Error()))
	}
}
