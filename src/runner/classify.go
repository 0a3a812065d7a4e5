package runner

import (
	"fmt"
	"strings"

	"github.com/elee1766/calagent/src/aisdk"
)

// The upstream error shape is not contractually stable, so classification is
// a priority-ordered set of substring heuristics, not a parser.

type errorClass struct {
	substrings []string
	errorType  string
	message    string
}

var turnErrorClasses = []errorClass{
	{
		substrings: []string{"rate limit", "too many requests", "throttle"},
		errorType:  "rate_limit",
		message:    "Rate limit exceeded. Please wait and try again.",
	},
	{
		substrings: []string{"quota", "usage"},
		errorType:  "quota_exceeded",
		message:    "Service quota exceeded. Please check your usage.",
	},
	{
		substrings: []string{"graph"},
		errorType:  "graph_api_error",
		message:    "Calendar backend error occurred.",
	},
}

// classifyTurnError converts an error caught at the turn boundary into an
// error result. The session is left intact for retry.
func classifyTurnError(err error, threadID string) *TurnResult {
	text := strings.ToLower(err.Error())

	for _, class := range turnErrorClasses {
		for _, sub := range class.substrings {
			if strings.Contains(text, sub) {
				return &TurnResult{
					Status:       "error",
					Message:      class.message,
					ThreadID:     threadID,
					ErrorType:    class.errorType,
					ErrorDetails: err.Error(),
				}
			}
		}
	}

	return &TurnResult{
		Status:       "error",
		Message:      "An unexpected error occurred while processing your request.",
		ThreadID:     threadID,
		ErrorType:    "unknown",
		ErrorDetails: err.Error(),
	}
}

// classifyRunFailure maps a failed run's error payload to a user-facing
// message.
func classifyRunFailure(lastError *aisdk.RunError) *TurnResult {
	res := &TurnResult{
		Status:    "error",
		RunStatus: aisdk.RunStatusFailed,
	}

	if lastError == nil {
		res.Message = "Run failed - possibly due to rate limiting or thread lock"
		res.ErrorType = "run_failed"
		return res
	}

	detail := lastError.Error()
	res.ErrorDetails = detail

	text := strings.ToLower(detail)
	switch {
	case strings.Contains(text, "rate") || strings.Contains(text, "limit"):
		res.Message = fmt.Sprintf("Rate limit hit: %s", detail)
		res.ErrorType = "rate_limit"
	case strings.Contains(text, "quota") || strings.Contains(text, "usage"):
		res.Message = fmt.Sprintf("Quota/Usage limit hit: %s", detail)
		res.ErrorType = "quota_exceeded"
	default:
		res.Message = fmt.Sprintf("Run failed: %s", detail)
		res.ErrorType = "run_failed"
	}
	return res
}
