package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PageEnvelope wraps list responses that support cursor pagination.
type PageEnvelope struct {
	Data       any    `json:"data"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
