package gating

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/resilience-labs/climatechat/common/httpx"
)

// HTTPClassifier calls a zero-shot classification service.
// Request:  {"query":"..."}
// Response: {"label":"yes","score":0.93}
type HTTPClassifier struct {
	Endpoint string
	APIKey   string
	Client   *httpx.Client
}

func NewHTTPClassifier(endpoint, apiKey string, client *httpx.Client) *HTTPClassifier {
	if client == nil {
		client = httpx.New(httpx.Options{Retry: 3})
	}
	return &HTTPClassifier{Endpoint: endpoint, APIKey: apiKey, Client: client}
}

type classifyReq struct {
	Query string `json:"query"`
}

type classifyResp struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, query string) (string, float64, error) {
	bs, err := json.Marshal(classifyReq{Query: query})
	if err != nil {
		return "", 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(bs))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("classifier returned %s", resp.Status)
	}

	var out classifyResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("decode classifier response: %w", err)
	}
	return out.Label, out.Score, nil
}
