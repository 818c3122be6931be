package util

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
)

// RobotsChecker checks robots.txt compliance, fetching each host's file once
type RobotsChecker struct {
	client *resty.Client
	agent  string
	mu     sync.Mutex
	hosts  map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a new robots.txt checker. The user agent is
// reduced to its product token for group matching.
func NewRobotsChecker(client *resty.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		client: client,
		agent:  NormalizeUserAgent(userAgent),
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

// CanFetch checks if the URL may be fetched and returns the crawl delay the
// host asks for. An unreachable robots.txt allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data := r.robots(ctx, parsed)
	if data == nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}

	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}
	return data.TestAgent(path, r.agent), delay, nil
}

func (r *RobotsChecker) robots(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.hosts[target.Host]; ok {
		return data
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
	data, err := r.fetch(ctx, robotsURL)
	if err != nil {
		// Not cached: a transient failure is retried on the next project
		slog.DebugContext(ctx, "robots.txt unavailable, allowing", "url", robotsURL, "err", err)
		return nil
	}

	r.hosts[target.Host] = data
	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	res, err := r.client.R().
		SetContext(ctx).
		Get(robotsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	if res.StatusCode() >= http.StatusInternalServerError {
		return nil, fmt.Errorf("fetch robots.txt: unexpected status: %s", res.Status())
	}

	data, err := robotstxt.FromStatusAndBytes(res.StatusCode(), res.Body())
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}

// NormalizeUserAgent extracts the product token of a user agent string
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
