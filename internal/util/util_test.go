package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(resty.New(), "fundscrape/0.1 (+https://example.com)")
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/project/FP001")
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 2*time.Second, delay)

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/private/x")
	require.NoError(t, err)
	require.False(t, allowed)

	require.Equal(t, int32(1), hits.Load(), "robots.txt should be fetched once per host")
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker(resty.New(), "fundscrape")
	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/project/FP001")
	require.NoError(t, err)
	require.True(t, allowed)
	require.Zero(t, delay)
}

func TestRobotsChecker_ServerErrorAllowsWithoutCaching(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	ctx := context.Background()
	checker := NewRobotsChecker(resty.New(), "fundscrape")

	allowed, _, err := checker.CanFetch(ctx, server.URL+"/project/FP001")
	require.NoError(t, err)
	require.True(t, allowed, "unavailable robots.txt allows the fetch")

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/project/FP001")
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, int32(2), hits.Load())
}

func TestRobotsChecker_BadURL(t *testing.T) {
	checker := NewRobotsChecker(resty.New(), "fundscrape")
	_, _, err := checker.CanFetch(context.Background(), "::invalid")
	require.Error(t, err)
}

func TestNormalizeUserAgent(t *testing.T) {
	require.Equal(t, "fundscrape", NormalizeUserAgent("fundscrape/0.1 (+https://example.com)"))
	require.Equal(t, "", NormalizeUserAgent(""))
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://plain.proxy:3128", "http://secure.proxy:3128", "internal.example")

	tests := []struct {
		target string
		want   string
	}{
		{"http://www.thegef.org/projects", "http://plain.proxy:3128"},
		{"https://www.greenclimate.fund/project/FP001", "http://secure.proxy:3128"},
		{"https://internal.example/page", ""},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			target, err := url.Parse(tt.target)
			require.NoError(t, err)

			got, err := proxy(&http.Request{URL: target})
			require.NoError(t, err)
			if tt.want == "" {
				require.Nil(t, got)
				return
			}
			require.Equal(t, tt.want, got.String())
		})
	}
}
