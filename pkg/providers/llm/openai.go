package llm

import (
	"context"
	"fmt"

	oai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

// OpenAILLM is an LLMProvider/StreamingLLMProvider backed by the official
// OpenAI SDK's streaming chat completions endpoint.
type OpenAILLM struct {
	client oai.Client
	model  string
}

func NewOpenAILLM(apiKey string, model string) *OpenAILLM {
	return NewOpenAILLMWithOptions(apiKey, model)
}

// NewOpenAILLMWithOptions accepts extra option.RequestOption values, used in
// tests to redirect the client at an httptest server via option.WithBaseURL.
func NewOpenAILLMWithOptions(apiKey string, model string, extra ...option.RequestOption) *OpenAILLM {
	if model == "" {
		model = "gpt-4o"
	}
	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)
	return &OpenAILLM{
		client: oai.NewClient(opts...),
		model:  model,
	}
}

func (l *OpenAILLM) params(messages []orchestrator.Message) oai.ChatCompletionNewParams {
	var msgs []oai.ChatCompletionMessageParamUnion
	for _, m := range messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, oai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, oai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, oai.UserMessage(m.Content))
		}
	}
	return oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(l.model),
		Messages: msgs,
	}
}

func (l *OpenAILLM) Complete(ctx context.Context, messages []orchestrator.Message) (string, error) {
	resp, err := l.client.Chat.Completions.New(ctx, l.params(messages))
	if err != nil {
		return "", fmt.Errorf("openai llm: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

func (l *OpenAILLM) CompleteStream(ctx context.Context, messages []orchestrator.Message, onToken func(fragment string, accumulated string, isComplete bool) error) error {
	stream := l.client.Chat.Completions.NewStreaming(ctx, l.params(messages))
	defer stream.Close()

	var accumulated string
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		accumulated += delta
		if err := onToken(delta, accumulated, false); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai llm stream: %w", err)
	}
	return onToken("", accumulated, true)
}

func (l *OpenAILLM) Name() string {
	return "openai-llm"
}
