package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Response formats understood by the client.
const (
	FormatJSONSchema = "json_schema"
	FormatJSONObject = "json_object"
	FormatText       = "text"
)

// Models the panel offers in its settings surface.
var SupportedModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

const DefaultModel = "gemini-2.0-flash"

// Client is the Analysis Service: one prompt in, the raw model text out.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Model() string
}

type Request struct {
	SystemPrompt string
	Prompt       string
	SchemaName   string
	Schema       any // used when the client is configured for json_schema output
	APIKey       string
	Model        string // overrides the configured model when set
	MaxTokens    int
	Temperature  *float64 // nil = client default
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	ResponseFormat string
	Temperature    *float64
}

type client struct {
	openai      openai.Client
	model       string
	maxTokens   int
	format      string
	temperature *float64
}

// New builds a client for an OpenAI-compatible chat endpoint. The API key may be
// empty here; callers then pass the user's credential on each Request.
func New(cfg Config) (Client, error) {
	format := cfg.ResponseFormat
	if format == "" {
		format = FormatJSONObject
	}
	switch format {
	case FormatJSONSchema, FormatJSONObject, FormatText:
	default:
		return nil, fmt.Errorf("unsupported response format: %s", format)
	}

	opts := []option.RequestOption{
		// Retries are decided by the caller through IsRetryable.
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	return &client{
		openai:      openai.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		format:      format,
		temperature: cfg.Temperature,
	}, nil
}

func (c *client) Generate(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:     model,
		Messages:  messages,
		MaxTokens: openai.Int(int64(maxTokens)),
	}

	switch {
	case c.format == FormatJSONSchema && req.Schema != nil:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.SchemaName,
					Description: openai.String("Structured proofreading response"),
					Schema:      req.Schema,
				},
			},
		}
	case c.format == FormatJSONSchema, c.format == FormatJSONObject:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	temperature := req.Temperature
	if temperature == nil {
		temperature = c.temperature
	}
	if temperature != nil {
		params.Temperature = openai.Float(*temperature)
	}

	var opts []option.RequestOption
	if req.APIKey != "" {
		opts = append(opts, option.WithAPIKey(req.APIKey))
	}

	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("analysis chat: %w", err)
	}

	slog.DebugContext(ctx, "analysis chat completed",
		"model", model,
		"schema", req.SchemaName,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return nil, ErrNoContent
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, ErrNoContent
	}

	return &Response{
		Content:          content,
		Model:            model,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

func (c *client) Model() string {
	return c.model
}

// ErrNoContent is returned when the service answers without any candidate text.
var ErrNoContent = errors.New("no content received")

// GenerateSchema reflects a JSON schema for T with inline definitions.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

// IsSupportedModel reports whether model is one of SupportedModels.
func IsSupportedModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

func IsRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.DebugContext(ctx, "analysis error not retryable: context cancelled or deadline exceeded")
		return false
	}

	if errors.Is(err, ErrNoContent) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			slog.WarnContext(ctx, "analysis rate limited, will retry",
				"status_code", apiErr.StatusCode)
			return true
		case apiErr.StatusCode >= 500:
			slog.WarnContext(ctx, "analysis server error, will retry",
				"status_code", apiErr.StatusCode)
			return true
		default:
			slog.ErrorContext(ctx, "analysis client error, not retryable",
				"status_code", apiErr.StatusCode,
				"error_type", apiErr.Type,
				"error_code", apiErr.Code)
			return false
		}
	}

	// Network errors (no API response) are generally retryable
	slog.WarnContext(ctx, "analysis network error, will retry", "error", err)
	return true
}
