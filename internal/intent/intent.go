// Package intent classifies inbound message text into the closed set of
// intents the bot dispatches on.
package intent

import "strings"

type Intent string

const (
	Greeting         Intent = "GREETING"
	HelpRequest      Intent = "HELP_REQUEST"
	FeedbackPositive Intent = "FEEDBACK_POSITIVE"
	FeedbackNegative Intent = "FEEDBACK_NEGATIVE"
	AnalysisRequest  Intent = "ANALYSIS_REQUEST"
	Unknown          Intent = "UNKNOWN"
)

// Parse maps a raw classifier label onto the closed set. Anything it does not
// recognize comes back as Unknown, which callers treat as an analysis request.
func Parse(raw string) Intent {
	switch Intent(strings.ToUpper(strings.TrimSpace(raw))) {
	case Greeting:
		return Greeting
	case HelpRequest:
		return HelpRequest
	case FeedbackPositive:
		return FeedbackPositive
	case FeedbackNegative:
		return FeedbackNegative
	case AnalysisRequest:
		return AnalysisRequest
	default:
		return Unknown
	}
}

// QuickRule resolves the one-word feedback replies without an external call.
// The match is on the lowercased, trimmed text; "sí" with or without the
// accent counts as affirmative.
func QuickRule(text string) (Intent, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "sí", "si":
		return FeedbackPositive, true
	case "no":
		return FeedbackNegative, true
	default:
		return Unknown, false
	}
}
