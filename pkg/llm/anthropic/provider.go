package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Krussell101/data-visualizer/pkg/llm"
	"github.com/Krussell101/data-visualizer/pkg/table"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 2048
)

// AnthropicProvider talks to the Anthropic Messages API. The generated
// analysis code executes on Anthropic's side (code-execution tool), so the
// provider only ever ships the table schema plus sample rows, never the full
// dataset.
type AnthropicProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

// Ensure AnthropicProvider implements Analyzer
var _ llm.Analyzer = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	if modelName == "" {
		modelName = defaultModel
	}
	return &AnthropicProvider{
		BaseURL:   defaultBaseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 45 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	// Temperature is a pointer so 0 is distinguishable from unset
	Temperature *float64 `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// analysisOutput is the structured shape the model is directed to return.
type analysisOutput struct {
	Text string          `json:"text"`
	Plot json.RawMessage `json:"plot,omitempty"`
}

// --- Interface Implementation ---

func (p *AnthropicProvider) Analyze(ctx context.Context, tbl *table.Table, window []llm.Exchange, prompt string, opts ...llm.Option) (*llm.Result, error) {
	// 1. Process Options
	options := &llm.Options{
		MaxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(options)
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	// 2. Fold the context window into alternating user/assistant turns
	messages := make([]anthropicMessage, 0, len(window)*2+1)
	for _, ex := range window {
		messages = append(messages,
			anthropicMessage{Role: "user", Content: ex.Prompt},
			anthropicMessage{Role: "assistant", Content: ex.Response},
		)
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: prompt})

	reqPayload := anthropicRequest{
		Model:     model,
		MaxTokens: options.MaxTokens,
		System:    buildSystemPrompt(tbl),
		Messages:  messages,
	}
	if options.Temperature != 0 {
		t := options.Temperature
		reqPayload.Temperature = &t
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// 3. Send Request
	url := p.BaseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", llm.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, bodyBytes)
	}

	// 4. Parse Response
	var apiResp anthropicResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", llm.ErrMalformedOutput, err)
	}

	text := ""
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: response carried no text content", llm.ErrMalformedOutput)
	}

	return parseAnalysisOutput(text)
}

// parseAnalysisOutput interprets the model's structured reply. The directive
// asks for a JSON object; raw prose is accepted as a plain-text answer so a
// chatty model does not fail the whole query.
func parseAnalysisOutput(text string) (*llm.Result, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if strings.HasPrefix(trimmed, "{") {
		var out analysisOutput
		if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
			return nil, fmt.Errorf("%w: structured output is not valid JSON: %v", llm.ErrMalformedOutput, err)
		}
		if out.Text == "" {
			return nil, fmt.Errorf("%w: structured output has no text field", llm.ErrMalformedOutput)
		}
		return &llm.Result{Text: out.Text, Plot: out.Plot}, nil
	}

	return &llm.Result{Text: trimmed}, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", llm.ErrTimeout, err)
	}
	// http.Client wraps its own timeout in a *url.Error with Timeout()=true
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return fmt.Errorf("%w: %v", llm.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", llm.ErrUpstreamUnavailable, err)
}

func classifyStatus(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", llm.ErrRateLimited, status)
	case status == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: status %d", llm.ErrContextTooLarge, status)
	case status == http.StatusBadRequest && strings.Contains(detail, "too long"):
		// Anthropic reports oversized prompts as a 400 invalid_request_error
		return fmt.Errorf("%w: status %d", llm.ErrContextTooLarge, status)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", llm.ErrTimeout, status)
	case status >= 500, status == 529: // 529 = Anthropic "overloaded"
		return fmt.Errorf("%w: status %d", llm.ErrUpstreamUnavailable, status)
	default:
		return fmt.Errorf("%w: status %d: %s", llm.ErrMalformedOutput, status, truncate(detail, 200))
	}
}

// buildSystemPrompt describes the table and pins down the output contract:
// visualizations must come back as replayable structured data, never a
// rendered image, so results stay cheap to store and re-render.
func buildSystemPrompt(tbl *table.Table) string {
	var b strings.Builder
	b.WriteString("You are a data analyst. Answer questions about the tabular dataset described below by writing and executing analysis code.\n\n")
	b.WriteString("DATASET SCHEMA\n")
	for _, col := range tbl.Columns {
		fmt.Fprintf(&b, "- %s (%s), %d nulls, sample values: %s\n",
			col.Name, col.Dtype, col.NullCount, strings.Join(col.SampleValues, ", "))
	}
	fmt.Fprintf(&b, "Rows: %d\n\n", tbl.RowCount())

	b.WriteString("SAMPLE ROWS (CSV)\n")
	b.WriteString(strings.Join(tbl.ColumnNames(), ","))
	b.WriteString("\n")
	limit := len(tbl.Rows)
	if limit > 20 {
		limit = 20
	}
	for _, row := range tbl.Rows[:limit] {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	b.WriteString(`
OUTPUT CONTRACT
Respond with a single JSON object: {"text": "<answer>", "plot": <chart spec or omit>}.
"text" is the natural-language answer. "plot", when the question calls for a
chart, is a structured chart description (series, axes, labels) that a client
can render itself. Never return an image, never return base64 data.`)
	return b.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
