package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/resilience-labs/climatechat/common/httpx"
)

// HTTPScorer calls an external grounding service.
// Request:  {"question":"...","answer":"...","contexts":["..."]}
// Response: {"score":0.85}
type HTTPScorer struct {
	Endpoint string
	APIKey   string
	Client   *httpx.Client
}

func NewHTTPScorer(endpoint, apiKey string, client *httpx.Client) *HTTPScorer {
	if client == nil {
		client = httpx.New(httpx.Options{})
	}
	return &HTTPScorer{Endpoint: endpoint, APIKey: apiKey, Client: client}
}

type scoreReq struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Contexts []string `json:"contexts"`
}

type scoreResp struct {
	Score float64 `json:"score"`
}

func (s *HTTPScorer) Score(ctx context.Context, question, answer string, contexts []string) (float64, error) {
	bs, err := json.Marshal(scoreReq{Question: question, Answer: answer, Contexts: contexts})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(bs))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("faithfulness request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("faithfulness service returned %s", resp.Status)
	}

	var out scoreResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode faithfulness response: %w", err)
	}
	return out.Score, nil
}
