package gating

import "strings"

// harmfulPatterns flag requests for destructive or dangerous actions.
var harmfulPatterns = []string{
	"start a fire",
	"burn",
	"toxic",
	"harm",
	"destroy",
	"damage",
	"kill",
	"pollute",
	"contaminate",
	"poison",
}

// denialPatterns flag climate-denial framing that gets a factual
// redirect instead of a generated answer.
var denialPatterns = []string{
	"hoax",
	"fake",
	"fraud",
	"scam",
	"conspiracy",
	"not real",
	"isn't real",
	"propaganda",
}

func matchHarmful(query string) (string, bool) {
	return matchAny(query, harmfulPatterns)
}

func matchDenial(query string) (string, bool) {
	return matchAny(query, denialPatterns)
}

func matchAny(query string, patterns []string) (string, bool) {
	q := strings.ToLower(query)
	for _, p := range patterns {
		if strings.Contains(q, p) {
			return p, true
		}
	}
	return "", false
}
