package schema

// Reason classifies why a pipeline run did not produce an answer. Gate and
// rewrite rejections are expected outcomes, not errors; they still travel
// through Result so callers get a single shape back.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonUnsupportedLanguage Reason = "unsupported_language"
	ReasonTranslationError    Reason = "translation_error"
	ReasonHarmfulContent      Reason = "harmful_content"
	ReasonMisinformation      Reason = "misinformation"
	ReasonNotClimateRelated   Reason = "not_climate_related"
	ReasonOffTopic            Reason = "off_topic"
	ReasonTooShort            Reason = "too_short"
	ReasonTooLong             Reason = "too_long"
	ReasonNoEvidence          Reason = "no_evidence"
	ReasonGenerationError     Reason = "generation_error"
	ReasonTimeout             Reason = "timeout"
	ReasonInternalError       Reason = "internal_error"
)

// Rejected reports whether the reason is a content-policy outcome rather
// than an infrastructure failure.
func (r Reason) Rejected() bool {
	switch r {
	case ReasonHarmfulContent, ReasonMisinformation, ReasonNotClimateRelated, ReasonOffTopic:
		return true
	}
	return false
}

// Result is the tagged union returned by the pipeline: Success carries an
// answer with citations, failure carries a reason and a user-facing message.
type Result struct {
	Success      bool         `json:"success"`
	Answer       string       `json:"answer,omitempty"`
	Citations    []Citation   `json:"citations,omitempty"`
	Faithfulness float64      `json:"faithfulness_score"`
	LanguageCode string       `json:"language_code,omitempty"`
	CacheHit     bool         `json:"cache_hit,omitempty"`
	Reason       Reason       `json:"reason,omitempty"`
	Message      string       `json:"message,omitempty"`
	Timings      StageTimings `json:"step_times,omitempty"`

	// Turn is the completed exchange for the caller to append to its
	// history window. Set on success only, including cache hits.
	Turn *ConversationTurn `json:"turn,omitempty"`
}
