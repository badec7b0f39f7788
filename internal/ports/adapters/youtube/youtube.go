package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0"
	// maxPageBytes bounds the watch page read; real pages are around 1-2 MB.
	maxPageBytes = 16 << 20
)

// Adapter fetches watch pages over HTTPS.
type Adapter struct {
	origin *url.URL
	client *http.Client
}

// New validates baseURL against allowedHosts. An empty baseURL means
// www.youtube.com.
func New(baseURL string, allowedHosts []string) (*Adapter, error) {
	origin, err := parseOrigin(baseURL, allowedHosts)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		origin: origin,
		client: &http.Client{Timeout: requestTimeout},
	}, nil
}

// WithHTTPClient swaps the client, e.g. for one trusting a test server.
func (a *Adapter) WithHTTPClient(c *http.Client) *Adapter {
	a.client = c
	return a
}

func (a *Adapter) FetchPage(ctx context.Context, videoID string) (string, error) {
	endpoint := a.origin.JoinPath("watch")
	endpoint.RawQuery = url.Values{"v": {videoID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read watch page: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("fetch watch page: status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}
	return string(body), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
