package graph

// Error kinds reported to the model as structured tool output. The run
// driver's error classification depends on these being distinguishable.
const (
	KindValidationError      = "validation_error"
	KindAuthenticationFailed = "authentication_failed"
	KindPermissionDenied     = "permission_denied"
	KindUserNotFound         = "user_not_found"
	KindBadRequest           = "bad_request"
	KindRateLimitExceeded    = "rate_limit_exceeded"
	KindServiceUnavailable   = "service_unavailable"
	KindGraphAPIError        = "graph_api_error"
	KindUnexpectedError      = "unexpected_error"
)

// Error is a structured calendar backend failure.
type Error struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Message
}

func newError(kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}
