// Mock cross-encoder reranking service for local development.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
)

type rerankReq struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopN      int      `json:"top_n"`
}

type result struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResp struct {
	Results []result `json:"results"`
}

// score counts query-term overlap, a stand-in for a real cross-encoder.
func score(query, doc string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(doc)
	hits := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

func handleRerank(w http.ResponseWriter, r *http.Request) {
	var req rerankReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out := rerankResp{}
	for i, doc := range req.Documents {
		out.Results = append(out.Results, result{Index: i, RelevanceScore: score(req.Query, doc)})
	}
	sort.Slice(out.Results, func(i, j int) bool {
		return out.Results[i].RelevanceScore > out.Results[j].RelevanceScore
	})
	if req.TopN > 0 && req.TopN < len(out.Results) {
		out.Results = out.Results[:req.TopN]
	}
	_ = json.NewEncoder(w).Encode(out)
}

func main() {
	addr := ":8082"
	if v := os.Getenv("RERANK_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/rerank", handleRerank)
	log.Printf("Reranker mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
