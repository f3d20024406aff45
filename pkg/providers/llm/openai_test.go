package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v2/option"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

func TestOpenAILLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		type choice struct {
			Index   int `json:"index"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		}
		resp := struct {
			ID      string   `json:"id"`
			Object  string   `json:"object"`
			Choices []choice `json:"choices"`
		}{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
		}
		c := choice{Index: 0, FinishReason: "stop"}
		c.Message.Role = "assistant"
		c.Message.Content = "hello from openai"
		resp.Choices = append(resp.Choices, c)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	l := NewOpenAILLMWithOptions("test-key", "gpt-4o", option.WithBaseURL(server.URL+"/"))

	messages := []orchestrator.Message{
		{Role: "user", Content: "hi"},
	}

	resp, err := l.Complete(context.Background(), messages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp != "hello from openai" {
		t.Errorf("expected 'hello from openai', got '%s'", resp)
	}

	if l.Name() != "openai-llm" {
		t.Errorf("expected openai-llm, got %s", l.Name())
	}
}
