package pipeline

import "github.com/resilience-labs/climatechat/schema"

// rejectionMessages are the canned user-facing replies for each
// rejection reason. They are served verbatim, untranslated.
var rejectionMessages = map[schema.Reason]string{
	schema.ReasonHarmfulContent:    "I cannot provide information on harmful actions. Please ask a question about climate change.",
	schema.ReasonMisinformation:    "I provide factual information about climate change based on scientific consensus.",
	schema.ReasonNotClimateRelated: "I apologize, but I can only help with climate-related questions.",
	schema.ReasonOffTopic:          "I apologize, but I can only help with climate-related questions.",
	schema.ReasonNoEvidence:        "I could not find reliable information to answer that. Please try rephrasing your climate change question.",
	schema.ReasonTooShort:          "Your question is too short. Please add a few more words so I can help.",
	schema.ReasonTooLong:           "Your question is too long. Please shorten it and try again.",
	schema.ReasonTranslationError:  "I could not translate your question right now. Please try again shortly.",
	schema.ReasonGenerationError:   "I could not generate an answer right now. Please try again shortly.",
	schema.ReasonTimeout:           "The request took too long to process. Please try again.",
	schema.ReasonInternalError:     "Something went wrong while processing your question. Please try again.",
}

// MessageFor returns the canned reply for a rejection reason, empty for
// reasons without one.
func MessageFor(reason schema.Reason) string {
	return rejectionMessages[reason]
}
