package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	httpTimeout  = 15 * time.Second
	maxBodyBytes = 5 << 20
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// HostLimiter hands out one token bucket per host so that sources sharing
// a host never exceed its request rate.
type HostLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewHostLimiter allows one request per interval per host, with the given
// burst.
func NewHostLimiter(interval time.Duration, burst int) *HostLimiter {
	return &HostLimiter{
		limit:    rate.Every(interval),
		burst:    burst,
		limiters: map[string]*rate.Limiter{},
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	h.mu.Lock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[host] = l
	}
	h.mu.Unlock()
	return l.Wait(ctx)
}

// Fetcher performs rate-limited GET requests for every source.
type Fetcher struct {
	client  *http.Client
	limiter *HostLimiter
}

// NewFetcher returns a Fetcher. A nil client gets a default with a 15s
// timeout.
func NewFetcher(client *http.Client, limiter *HostLimiter) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	return &Fetcher{client: client, limiter: limiter}
}

// Get fetches rawURL and returns the body of a 200 response.
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", u.Host, resp.StatusCode)
	}
	return body, nil
}
