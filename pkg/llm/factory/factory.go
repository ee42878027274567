package factory

import (
	"fmt"

	"github.com/Krussell101/data-visualizer/pkg/llm"
	"github.com/Krussell101/data-visualizer/pkg/llm/anthropic"
	"github.com/Krussell101/data-visualizer/pkg/llm/fake"
)

// NewAnalyzer builds the configured LLM collaborator. "fake" answers simple
// aggregations locally for keyless development.
func NewAnalyzer(providerType, modelName, apiKey string) (llm.Analyzer, error) {
	switch providerType {
	case "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return anthropic.NewAnthropicProvider(apiKey, modelName), nil
	case "fake":
		return fake.NewFakeAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
