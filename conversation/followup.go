package conversation

import "strings"

// followUpMarkers are words and openers that usually reference an
// earlier turn. Purely advisory: used to decide whether history is
// worth sending when the rewriter is unavailable.
var followUpMarkers = []string{
	"it", "they", "them", "that", "this", "those", "these",
	"else", "more", "also", "again",
	"why", "how",
}

var followUpOpeners = []string{
	"what about", "how about", "and ", "but ", "so ",
}

// DetectFollowUp reports whether a query looks like it depends on the
// previous turns. Heuristic only; the LLM classification is the real
// arbiter when it is reachable.
func DetectFollowUp(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, opener := range followUpOpeners {
		if strings.HasPrefix(q, opener) {
			return true
		}
	}
	words := strings.Fields(strings.Map(func(r rune) rune {
		switch r {
		case '?', '!', '.', ',':
			return -1
		}
		return r
	}, q))
	// Very short questions built around a reference word are almost
	// always follow-ups ("why?", "how much more?").
	if len(words) <= 4 {
		for _, w := range words {
			for _, marker := range followUpMarkers {
				if w == marker {
					return true
				}
			}
		}
	}
	return false
}
