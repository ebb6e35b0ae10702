// Package post refines retrieved evidence before generation.
package post

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/resilience-labs/climatechat/common/httpx"
	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/schema"
)

// defaultMaxCandidates caps what is sent to the cross-encoder; scoring
// cost grows linearly with candidates and quality plateaus well below
// this.
const defaultMaxCandidates = 15

// defaultTopN is how many documents survive reranking.
const defaultTopN = 5

// Reranker reorders candidates by cross-encoder relevance to the query.
// Implementations never fail the request: when scoring is unavailable
// they return the pre-rerank order truncated to topN.
type Reranker interface {
	Rerank(ctx context.Context, query string, in []schema.Document, topN int) []schema.Document
}

// HTTPReranker calls an external cross-encoder reranking service
// (BGE-reranker or Cohere-compatible).
// Request:  {"query":"...","documents":["..."],"model":"...","top_n":5}
// Response: {"results":[{"index":0,"relevance_score":0.97}]}
type HTTPReranker struct {
	Endpoint      string
	Model         string
	APIKey        string
	MaxCandidates int
	Client        *httpx.Client
}

func NewHTTPReranker(endpoint, model, apiKey string, client *httpx.Client) *HTTPReranker {
	if client == nil {
		client = httpx.New(httpx.Options{})
	}
	return &HTTPReranker{Endpoint: endpoint, Model: model, APIKey: apiKey, Client: client}
}

type rerankReq struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model,omitempty"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResp struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

func (r *HTTPReranker) Rerank(ctx context.Context, query string, in []schema.Document, topN int) []schema.Document {
	if topN <= 0 {
		topN = defaultTopN
	}
	maxC := r.MaxCandidates
	if maxC <= 0 {
		maxC = defaultMaxCandidates
	}
	if len(in) > maxC {
		in = in[:maxC]
	}
	if r.Endpoint == "" || len(in) == 0 {
		return truncate(in, topN)
	}

	documents := make([]string, len(in))
	for i, doc := range in {
		documents[i] = doc.Content
	}
	bs, err := json.Marshal(rerankReq{Query: query, Documents: documents, Model: r.Model, TopN: topN})
	if err != nil {
		return truncate(in, topN)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(bs))
	if err != nil {
		logger.Warnf("rerank: build request: %v", err)
		return truncate(in, topN)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		logger.Warnf("rerank: request failed, keeping original order: %v", err)
		return truncate(in, topN)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnf("rerank: service returned %s, keeping original order", resp.Status)
		return truncate(in, topN)
	}

	var rr rerankResp
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil || len(rr.Results) == 0 {
		logger.Warnf("rerank: unusable response, keeping original order: %v", err)
		return truncate(in, topN)
	}

	out := make([]schema.Document, 0, len(rr.Results))
	for _, res := range rr.Results {
		if res.Index < 0 || res.Index >= len(in) {
			continue
		}
		doc := in[res.Index]
		doc.Score = res.RelevanceScore
		out = append(out, doc)
	}
	if len(out) == 0 {
		return truncate(in, topN)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, topN)
}

// NopReranker keeps the retrieval order.
type NopReranker struct{}

func (NopReranker) Rerank(_ context.Context, _ string, in []schema.Document, topN int) []schema.Document {
	if topN <= 0 {
		topN = defaultTopN
	}
	return truncate(in, topN)
}

func truncate(in []schema.Document, topN int) []schema.Document {
	if topN > 0 && len(in) > topN {
		return append([]schema.Document(nil), in[:topN]...)
	}
	return in
}
