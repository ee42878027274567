package llm

import "errors"

// Category partitions analyzer failures into the classes the executor acts
// on. Categories are mutually exclusive; Retryable alone decides whether the
// executor attempts its single retry.
type Category string

const (
	CategoryDataUnavailable     Category = "data_unavailable"
	CategoryRateLimited         Category = "rate_limited"
	CategoryTimeout             Category = "timeout"
	CategoryContextTooLarge     Category = "context_too_large"
	CategoryMalformedOutput     Category = "malformed_output"
	CategoryUpstreamUnavailable Category = "upstream_unavailable"
)

// Sentinel errors wrapped by providers. Classify recovers the category from
// any error chain.
var (
	ErrRateLimited         = errors.New("upstream rate limited")
	ErrTimeout             = errors.New("upstream timed out")
	ErrContextTooLarge     = errors.New("context exceeds upstream limit")
	ErrMalformedOutput     = errors.New("upstream returned uninterpretable output")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Classify maps an analyzer error to its category. Anything unrecognized is
// treated as malformed output: fatal, logged in full server-side, generic
// message to the user.
func Classify(err error) Category {
	switch {
	case errors.Is(err, ErrRateLimited):
		return CategoryRateLimited
	case errors.Is(err, ErrTimeout):
		return CategoryTimeout
	case errors.Is(err, ErrContextTooLarge):
		return CategoryContextTooLarge
	case errors.Is(err, ErrUpstreamUnavailable):
		return CategoryUpstreamUnavailable
	default:
		return CategoryMalformedOutput
	}
}

// Retryable reports whether a category is worth exactly one retry. Retrying
// a semantically malformed request wastes latency and cost without changing
// the outcome, so only transient upstream conditions qualify.
func (c Category) Retryable() bool {
	switch c {
	case CategoryRateLimited, CategoryTimeout, CategoryUpstreamUnavailable:
		return true
	}
	return false
}

// UserMessage returns the message persisted on an error exchange. Raw
// upstream error text never reaches the user; it may leak internals.
func (c Category) UserMessage() string {
	switch c {
	case CategoryDataUnavailable:
		return "The dataset is not available for analysis right now. Please check that it finished processing and try again."
	case CategoryRateLimited:
		return "The analysis service is receiving too many requests. Please try again in a moment."
	case CategoryTimeout:
		return "The analysis took too long and was stopped. Try a simpler question."
	case CategoryContextTooLarge:
		return "The conversation has grown too large for this question. Try starting a new session."
	case CategoryUpstreamUnavailable:
		return "The analysis service could not be reached. Please try again shortly."
	default:
		return "Something went wrong while analyzing your question. Please try again."
	}
}
