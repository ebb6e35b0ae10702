package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/resilience-labs/climatechat/common/httpx"
	"github.com/resilience-labs/climatechat/schema"
)

// RemoteProvider calls a multilingual embedding service that returns
// dense vectors and sparse lexical weights in one request (BGE-M3 style
// servers expose exactly this shape).
type RemoteProvider struct {
	endpoint string
	apiKey   string
	client   *httpx.Client
}

func NewRemoteProvider(endpoint, apiKey string, client *httpx.Client) *RemoteProvider {
	if client == nil {
		client = httpx.New(httpx.Options{})
	}
	return &RemoteProvider{endpoint: endpoint, apiKey: apiKey, client: client}
}

type remoteRequest struct {
	Inputs       []string `json:"inputs"`
	ReturnDense  bool     `json:"return_dense"`
	ReturnSparse bool     `json:"return_sparse"`
}

type remoteSparse struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

type remoteResponse struct {
	Dense  [][]float32    `json:"dense"`
	Sparse []remoteSparse `json:"sparse"`
}

func (p *RemoteProvider) Embed(ctx context.Context, text string) ([]float32, schema.SparseVector, error) {
	body, err := json.Marshal(remoteRequest{
		Inputs:       []string{text},
		ReturnDense:  true,
		ReturnSparse: true,
	})
	if err != nil {
		return nil, schema.SparseVector{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, schema.SparseVector{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, schema.SparseVector{}, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, schema.SparseVector{}, fmt.Errorf("embedding service returned %s", resp.Status)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, schema.SparseVector{}, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(out.Dense) == 0 || len(out.Dense[0]) == 0 {
		return nil, schema.SparseVector{}, fmt.Errorf("embedding service returned no dense vector")
	}
	sparse := schema.SparseVector{}
	if len(out.Sparse) > 0 {
		sparse.Indices = out.Sparse[0].Indices
		sparse.Values = out.Sparse[0].Values
	}
	return out.Dense[0], sparse, nil
}
