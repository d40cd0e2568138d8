// Package healthtips aggregates articles from the public MyHealthfinder API.
package healthtips

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/evansachie/lifeguard/internal/metrics"
)

const (
	// DefaultBaseURL is the MyHealthfinder v4 API root.
	DefaultBaseURL = "https://odphp.health.gov/myhealthfinder/api/v4"

	// ClientTimeout is the total request timeout.
	ClientTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// DetailTTL is how long a topic detail stays memoized in process.
	DetailTTL = 6 * time.Hour

	// maxBodySize bounds upstream response bodies.
	maxBodySize = 4 << 20
)

// Sentinel errors for upstream lookups.
var (
	ErrTopicNotFound   = errors.New("topic not found")
	ErrInvalidResponse = errors.New("invalid MyHealthfinder response")
)

// NewHTTPClient creates an HTTP client configured for MyHealthfinder.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 8 * time.Second,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   25,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Client fetches topics from MyHealthfinder. Requests are throttled by a
// token bucket and topic details are memoized.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	details *gocache.Cache
	metrics metrics.Recorder
}

// NewClient creates a client for baseURL allowing rps requests per second.
// rps <= 0 disables throttling.
func NewClient(baseURL string, rps int, httpClient *http.Client, recorder metrics.Recorder) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = rps
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		details: gocache.New(DetailTTL, time.Hour),
		metrics: recorder,
	}
}

// ItemList returns the raw topic list JSON.
func (c *Client) ItemList(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/itemlist.json?Type=topic")
}

// TopicDetail returns the first resource of a topic search as JSON.
// It returns ErrTopicNotFound when the response carries no resource.
func (c *Client) TopicDetail(ctx context.Context, id string) (gjson.Result, error) {
	if cached, ok := c.details.Get(id); ok {
		return gjson.Parse(cached.(string)), nil
	}

	body, err := c.get(ctx, "/topicsearch.json?TopicId="+url.QueryEscape(id))
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ErrInvalidResponse
	}

	resource := gjson.GetBytes(body, "Result.Resources.Resource.0")
	if !resource.Exists() || !resource.IsObject() {
		return gjson.Result{}, ErrTopicNotFound
	}

	c.details.Set(id, resource.Raw, gocache.DefaultExpiration)
	return resource, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "LifeGuard-API/1.0")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveUpstreamDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("myhealthfinder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("myhealthfinder request failed: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read myhealthfinder response: %w", err)
	}
	return body, nil
}
