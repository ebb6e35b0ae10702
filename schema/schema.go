package schema

import "time"

// Document is one retrieved passage. Documents are immutable once produced
// by the retrieval engine; downstream stages read them by value.
type Document struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	URL      string   `json:"url"`
	Score    float64  `json:"score"`
	Keywords []string `json:"keywords,omitempty"`
}

// Citation ties a generated claim back to a retrieved document.
type Citation struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
	Snippet string `json:"snippet"`
}

// ConversationTurn is one completed query/answer exchange. The caller owns
// the history window; the pipeline only reads it.
type ConversationTurn struct {
	Query        string    `json:"query"`
	Answer       string    `json:"answer"`
	LanguageCode string    `json:"language_code"`
	Timestamp    time.Time `json:"timestamp"`
}

// SparseVector carries lexical weights in index/value form, the layout
// hybrid-capable vector indexes expect.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// IsZero reports whether the sparse vector carries no weights.
func (s SparseVector) IsZero() bool { return len(s.Indices) == 0 }

// CacheEntry is the value stored in the response cache, keyed by
// "<lang>:<normalized query>". Written atomically at the key level.
type CacheEntry struct {
	Answer       string             `json:"answer"`
	Citations    []Citation         `json:"citations"`
	Faithfulness float64            `json:"faithfulness_score"`
	Metadata     CacheEntryMetadata `json:"metadata"`
}

// CacheEntryMetadata records provenance for a cached answer.
type CacheEntryMetadata struct {
	CachedAt            time.Time     `json:"cached_at"`
	LanguageCode        string        `json:"language_code"`
	ProcessingTime      time.Duration `json:"processing_time"`
	RequiredTranslation bool          `json:"required_translation"`
}

// StageTimings maps pipeline stage name to elapsed duration for one run.
type StageTimings map[string]time.Duration
