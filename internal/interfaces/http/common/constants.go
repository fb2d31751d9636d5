package common

const (
	// MaxRequestBody limits JSON request bodies across all endpoints.
	MaxRequestBody = 1 << 20
)
