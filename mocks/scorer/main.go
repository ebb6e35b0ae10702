// Mock faithfulness scoring service for local development.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type scoreReq struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Contexts []string `json:"contexts"`
}

type scoreResp struct {
	Score float64 `json:"score"`
}

// score approximates entailment with answer-term coverage over the
// provided contexts.
func score(answer string, contexts []string) float64 {
	terms := strings.Fields(strings.ToLower(answer))
	if len(terms) == 0 || len(contexts) == 0 {
		return 0
	}
	joined := strings.ToLower(strings.Join(contexts, " "))
	hits := 0
	for _, t := range terms {
		if strings.Contains(joined, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

func handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(scoreResp{Score: score(req.Answer, req.Contexts)})
}

func main() {
	addr := ":8081"
	if v := os.Getenv("SCORER_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/score", handleScore)
	log.Printf("Scorer mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
