// ABOUTME: OpenAI client for composing calibration drafts
// ABOUTME: Generates placeholder-only summaries plus a deterministic leak injector
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harper/provenance-standalone/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the default model for chat completions
const DefaultChatModel = "gpt-4o-mini"

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey     string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	chatModel := os.Getenv("GATE_OPENAI_MODEL")
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	return &ClientConfig{
		APIKey:     apiKey,
		ChatModel:  chatModel,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second * 2,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client     *openai.Client
	chatModel  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:     openai.NewClient(config.APIKey),
		chatModel:  config.ChatModel,
		timeout:    timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
	}, nil
}

// ComposeDraft asks the model for a short technical summary on the topic
// that references quantities only through the given placeholder tokens.
// A response that uses none of the tokens counts as a failed attempt.
func (c *OpenAIClient) ComposeDraft(ctx context.Context, topic string, placeholders []string) (string, error) {
	if len(placeholders) == 0 {
		return "", fmt.Errorf("at least one placeholder token is required")
	}

	systemPrompt := `You write short technical summaries for research notes. You will be
given a topic and a list of placeholder tokens. Every numeric quantity you
mention MUST be written as one of the given placeholder tokens, exactly as
provided. Do not write any bare numeric literals: no measurements, no
counts, no years, no version numbers. Spell out small counts in words.

Return ONLY a JSON object with one field: {"draft": "..."}. No additional text.`

	userPrompt := fmt.Sprintf("Topic: %s\n\nPlaceholder tokens:\n%s\n\nWrite a summary of three to five sentences.",
		topic, strings.Join(placeholders, "\n"))

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(util.CalculateBackoff(c.retryDelay, attempt))
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: 0.3,
		})

		if err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}

		if len(resp.Choices) == 0 {
			cancel()
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		content := resp.Choices[0].Message.Content

		var parsed struct {
			Draft string `json:"draft"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			cancel()
			lastErr = fmt.Errorf("attempt %d: failed to parse JSON: %w", attempt+1, err)
			continue
		}

		if strings.TrimSpace(parsed.Draft) == "" {
			cancel()
			lastErr = fmt.Errorf("attempt %d: empty draft returned", attempt+1)
			continue
		}

		if !usesAnyPlaceholder(parsed.Draft, placeholders) {
			cancel()
			lastErr = fmt.Errorf("attempt %d: draft used none of the placeholder tokens", attempt+1)
			continue
		}

		cancel()
		return parsed.Draft, nil
	}

	return "", fmt.Errorf("failed to compose draft after %d attempts: %w", c.maxRetries+1, lastErr)
}

func usesAnyPlaceholder(draft string, placeholders []string) bool {
	for _, p := range placeholders {
		if strings.Contains(draft, p) {
			return true
		}
	}
	return false
}

// InjectLeaks appends one sentence per literal to the draft, planting bare
// numerals at known positions. It is the deterministic fallback when no
// model is configured, and the augmenter for completeness testing.
func InjectLeaks(draft string, literals []string) string {
	if len(literals) == 0 {
		return draft
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(draft, " \t\n"))
	for _, lit := range literals {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(fmt.Sprintf("An intermediate value of %s was left in the notes.", lit))
	}
	return b.String()
}
