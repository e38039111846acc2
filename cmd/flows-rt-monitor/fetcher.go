package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/config"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"
)

// fetcher reads a raw payload from a URL or a local file.
type fetcher struct {
	client *flowsrt.Client
}

func newFetcher(cfg *config.AppConfig) *fetcher {
	timeout := time.Duration(cfg.API.TimeoutMS) * time.Millisecond
	return &fetcher{
		client: flowsrt.NewClient(cfg.API.Key, timeout, flowsrt.WithUserAgent(cfg.API.UserAgent)),
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// fetch returns the payload at urlOrPath. Anything that is not an http(s)
// URL is read from disk.
func (f *fetcher) fetch(ctx context.Context, urlOrPath string) ([]byte, error) {
	if !isURL(urlOrPath) {
		return os.ReadFile(urlOrPath)
	}
	return f.client.Fetch(ctx, urlOrPath)
}
