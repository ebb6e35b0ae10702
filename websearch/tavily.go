// Package websearch is the fallback evidence source used when the
// index-backed answer fails faithfulness verification.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/resilience-labs/climatechat/common/httpx"
	"github.com/resilience-labs/climatechat/schema"
)

const defaultEndpoint = "https://api.tavily.com/search"

// Client searches a Tavily-compatible web search API.
type Client struct {
	endpoint   string
	apiKey     string
	maxResults int
	http       *httpx.Client
	limiter    *rate.Limiter
}

// Options configures the client.
type Options struct {
	Endpoint   string
	APIKey     string
	MaxResults int
	// RatePerMinute caps outbound searches; fallback traffic must not
	// exhaust the API quota during an index incident.
	RatePerMinute int
	HTTP          *httpx.Client
}

func New(opt Options) *Client {
	if opt.Endpoint == "" {
		opt.Endpoint = defaultEndpoint
	}
	if opt.MaxResults <= 0 {
		opt.MaxResults = 5
	}
	if opt.RatePerMinute <= 0 {
		opt.RatePerMinute = 60
	}
	if opt.HTTP == nil {
		opt.HTTP = httpx.New(httpx.Options{})
	}
	return &Client{
		endpoint:   opt.Endpoint,
		apiKey:     opt.APIKey,
		maxResults: opt.MaxResults,
		http:       opt.HTTP,
		limiter:    rate.NewLimiter(rate.Limit(float64(opt.RatePerMinute)/60.0), opt.RatePerMinute),
	}
}

type searchReq struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResp struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search returns web results as documents, best first.
func (c *Client) Search(ctx context.Context, query string) ([]schema.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	bs, err := json.Marshal(searchReq{APIKey: c.apiKey, Query: query, MaxResults: c.maxResults})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned %s", resp.Status)
	}

	var out searchResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode web search response: %w", err)
	}
	docs := make([]schema.Document, 0, len(out.Results))
	for _, r := range out.Results {
		docs = append(docs, schema.Document{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return docs, nil
}
