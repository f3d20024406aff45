package llm

import (
	"context"
	"fmt"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

// AnthropicLLM is an LLMProvider/StreamingLLMProvider backed by the official
// Anthropic SDK's streaming Messages API.
type AnthropicLLM struct {
	client anthropic.Client
	model  string
}

func NewAnthropicLLM(apiKey string, model string) *AnthropicLLM {
	return NewAnthropicLLMWithOptions(apiKey, model)
}

// NewAnthropicLLMWithOptions accepts extra option.RequestOption values, used
// in tests to redirect the client at an httptest server.
func NewAnthropicLLMWithOptions(apiKey string, model string, extra ...option.RequestOption) *AnthropicLLM {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)
	return &AnthropicLLM{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (l *AnthropicLLM) params(messages []orchestrator.Message) anthropic.MessageNewParams {
	var system string
	var anthropicMessages []anthropic.MessageParam

	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		if m.Role == "assistant" {
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(l.model),
		MaxTokens: 1024,
		Messages:  anthropicMessages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

func (l *AnthropicLLM) Complete(ctx context.Context, messages []orchestrator.Message) (string, error) {
	resp, err := l.client.Messages.New(ctx, l.params(messages))
	if err != nil {
		return "", fmt.Errorf("anthropic llm: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no content returned from anthropic")
	}
	return resp.Content[0].Text, nil
}

func (l *AnthropicLLM) CompleteStream(ctx context.Context, messages []orchestrator.Message, onToken func(fragment string, accumulated string, isComplete bool) error) error {
	stream := l.client.Messages.NewStreaming(ctx, l.params(messages))

	var accumulated string
	for stream.Next() {
		event := stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		text := delta.Delta.Text
		if text == "" {
			continue
		}
		accumulated += text
		if err := onToken(text, accumulated, false); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic llm stream: %w", err)
	}
	return onToken("", accumulated, true)
}

func (l *AnthropicLLM) Name() string {
	return "anthropic-llm"
}
