package llm

import (
	"context"
	"encoding/json"

	"github.com/Krussell101/data-visualizer/pkg/table"
)

// Exchange is one prior prompt/response pair handed to the analyzer as
// conversation context.
type Exchange struct {
	Prompt   string
	Response string
}

// Result is a successful analyzer outcome. Plot, when present, is an opaque
// structured visualization payload: the engine persists it verbatim and the
// presentation layer replays it without recomputation. It is never a rendered
// image.
type Result struct {
	Text string
	Plot json.RawMessage
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Analyzer is the contract for the LLM + code-execution collaborator. The
// generated analysis code runs against the table on the collaborator's side;
// it is untrusted input, so callers must not assume side-effect-free
// execution. Isolation (containers, resource limits) is the collaborator's
// responsibility.
//
// Implementations must be safe for concurrent use: the registry hands one
// shared handle to every in-flight query.
type Analyzer interface {
	// Analyze answers the prompt against the table, conditioned on the
	// bounded context window. Failures are classified (see errors.go).
	Analyze(ctx context.Context, tbl *table.Table, window []Exchange, prompt string, options ...Option) (*Result, error)
}
