package http

const (
	CodeUnknown          = "UNKNOWN"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeNotFound         = "NOT_FOUND"
	CodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)
