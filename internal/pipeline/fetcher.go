package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/ppiankov/fundscrape/internal/cache"
	"github.com/ppiankov/fundscrape/internal/model"
	"github.com/ppiankov/fundscrape/internal/util"
	"github.com/ppiankov/fundscrape/internal/worker"
	"golang.org/x/net/html"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Source returns the parsed document for a project page
type Source interface {
	Fetch(ctx context.Context, url string) (*html.Node, error)
}

// Fetcher fetches and parses project pages. It makes exactly one request
// per page and never retries.
type Fetcher struct {
	client  *resty.Client
	limiter *worker.Limiter
	robots  *util.RobotsChecker // nil when robots.txt is ignored
	cache   cache.Cache         // nil when caching is disabled
}

// NewFetcher creates a Fetcher from configuration
func NewFetcher(cfg *model.Config) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	client := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.HTTP.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(3)).
		SetHeader("User-Agent", cfg.HTTP.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")

	f := &Fetcher{
		client:  client,
		limiter: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
	}
	if cfg.HTTP.RespectRobots {
		f.robots = util.NewRobotsChecker(client, cfg.HTTP.UserAgent)
	}
	if cfg.Cache.Enabled {
		f.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}
	return f
}

// Fetch retrieves and parses the page at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*html.Node, error) {
	body, err := f.body(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}

func (f *Fetcher) body(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.PageKey(rawURL)
	if f.cache != nil {
		if body, ok := f.cache.Get(key); ok {
			slog.DebugContext(ctx, "cache hit", "url", rawURL)
			return body, nil
		}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		if delay > 0 {
			if parsed, err := url.Parse(rawURL); err == nil {
				f.limiter.SlowHost(parsed.Host, delay)
			}
		}
	}

	if !f.limiter.Allow(rawURL) {
		slog.DebugContext(ctx, "rate limited, waiting", "url", rawURL)
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	res, err := f.client.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("unexpected status: %s", res.Status())
	}

	body := res.Body()
	if f.cache != nil {
		if err := f.cache.Set(key, body, 0); err != nil {
			slog.WarnContext(ctx, "cache write failed", "url", rawURL, "err", err)
		}
	}
	return body, nil
}
