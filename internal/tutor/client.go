package tutor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/ib-tutor/backend/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// ResponseFormat selects how the backend should shape its completion.
type ResponseFormat string

const (
	FormatFreeText       ResponseFormat = "free_text"
	FormatStructuredJSON ResponseFormat = "structured_json"
)

// CompletionOptions are the per-call knobs for the generative backend.
type CompletionOptions struct {
	Temperature    float64
	MaxTokens      int
	ResponseFormat ResponseFormat
}

// Backend failure taxonomy. Callers own all failure policy: the client does
// no retries and no content validation.
var (
	ErrBackendUnavailable = errors.New("generative backend unavailable")
	ErrBackend            = errors.New("generative backend error")
)

// Client is the narrow I/O boundary to the text-completion service.
type Client interface {
	// Complete returns the raw text of the top completion.
	Complete(ctx context.Context, messages []models.Message, opts CompletionOptions) (string, error)
	ModelName() string
}

// NewClient selects a backend implementation from the environment.
func NewClient() Client {
	if os.Getenv("MOCK_TUTOR") == "true" {
		log.Println("Tutor using mock backend")
		return NewMockClient()
	}

	if os.Getenv("LLM_PROVIDER") == "anthropic" {
		model := os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		log.Println("Tutor using Anthropic API:", model)
		return NewAnthropicClient(model)
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o"
	}
	log.Println("Tutor using OpenAI API:", model)
	return NewOpenAIClient(model)
}

// ── OpenAIClient ────────────────────────────────────────────

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []models.Message, opts CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}

	if opts.ResponseFormat == FormatStructuredJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrBackend)
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ModelName() string {
	return c.model
}

func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case models.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func classifyOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}

	// Transport-level failure (DNS, connection refused, timeout).
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}

// ── AnthropicClient ─────────────────────────────────────────

type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicClient(model string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicClient{client: &client, model: model}
}

func (c *AnthropicClient) Complete(ctx context.Context, messages []models.Message, opts CompletionOptions) (string, error) {
	// Anthropic has no JSON response mode; structured calls rely on the
	// prompt demanding JSON, and the parser tolerates deviations anyway.
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam

	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case models.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: param.NewOpt(opts.Temperature),
		System:      system,
		Messages:    turns,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: no text content in response", ErrBackend)
}

func (c *AnthropicClient) ModelName() string {
	return c.model
}

// ── MockClient ──────────────────────────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Complete(ctx context.Context, messages []models.Message, opts CompletionOptions) (string, error) {
	if opts.ResponseFormat == FormatStructuredJSON {
		return `{"isCorrect":true,"score":100,"feedback":"[Mock] Correct answer.","suggestions":[]}`, nil
	}
	return "[Mock] What do you already know about this problem? Try breaking it into smaller steps.", nil
}

func (m *MockClient) ModelName() string {
	return "mock"
}
