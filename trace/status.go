package trace

// StatusCode mirrors the three-state span status described informally by
// spec.md §3 ("status").
type StatusCode int

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOK
	StatusCodeError
)

// Status is the outcome recorded on a span: a code plus an optional
// human-readable description (only meaningful for StatusCodeError).
type Status struct {
	Code        StatusCode
	Description string
}
