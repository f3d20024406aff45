package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

// GoogleLLM is an LLMProvider/StreamingLLMProvider backed by the official
// google.golang.org/genai SDK's streaming GenerateContent API.
type GoogleLLM struct {
	client *genai.Client
	model  string
}

func NewGoogleLLM(ctx context.Context, apiKey string, model string) (*GoogleLLM, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("google genai client: %w", err)
	}
	return &GoogleLLM{client: client, model: model}, nil
}

func (l *GoogleLLM) contents(messages []orchestrator.Message) (string, []*genai.Content) {
	var system string
	var contents []*genai.Content
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return system, contents
}

func (l *GoogleLLM) config(system string) *genai.GenerateContentConfig {
	if system == "" {
		return nil
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	}
}

func (l *GoogleLLM) Complete(ctx context.Context, messages []orchestrator.Message) (string, error) {
	system, contents := l.contents(messages)
	resp, err := l.client.Models.GenerateContent(ctx, l.model, contents, l.config(system))
	if err != nil {
		return "", fmt.Errorf("google llm: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no response from google llm")
	}
	return text, nil
}

func (l *GoogleLLM) CompleteStream(ctx context.Context, messages []orchestrator.Message, onToken func(fragment string, accumulated string, isComplete bool) error) error {
	system, contents := l.contents(messages)

	var accumulated string
	for chunk, err := range l.client.Models.GenerateContentStream(ctx, l.model, contents, l.config(system)) {
		if err != nil {
			return fmt.Errorf("google llm stream: %w", err)
		}
		text := chunk.Text()
		if text == "" {
			continue
		}
		accumulated += text
		if err := onToken(text, accumulated, false); err != nil {
			return err
		}
	}
	return onToken("", accumulated, true)
}

func (l *GoogleLLM) Name() string {
	return "google-llm"
}
