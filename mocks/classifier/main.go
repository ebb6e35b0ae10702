// Mock zero-shot topic classification service for local development.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type classifyReq struct {
	Query string `json:"query"`
}

type classifyResp struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

var topicTerms = []string{
	"climate", "warming", "carbon", "emission", "greenhouse",
	"weather", "temperature", "sea level", "renewable", "fossil",
}

func handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lower := strings.ToLower(req.Query)
	resp := classifyResp{Label: "off-topic", Score: 0.9}
	for _, term := range topicTerms {
		if strings.Contains(lower, term) {
			resp = classifyResp{Label: "on-topic", Score: 0.95}
			break
		}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func main() {
	addr := ":8083"
	if v := os.Getenv("CLASSIFIER_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/classify", handleClassify)
	log.Printf("Classifier mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
