package llm

import (
	"context"

	"github.com/chicogong/realtime-duplex/pkg/orchestrator"
)

// BatchLLMStream wraps any batch orchestrator.LLMProvider (GroqLLM) so it
// satisfies orchestrator.StreamingLLMProvider. It runs Complete once and
// delivers the whole response as one isComplete=false fragment (skipped when
// empty) followed by one isComplete=true call, rather than a true
// token-by-token stream.
type BatchLLMStream struct {
	orchestrator.LLMProvider
}

func NewBatchLLMStream(p orchestrator.LLMProvider) *BatchLLMStream {
	return &BatchLLMStream{LLMProvider: p}
}

func (b *BatchLLMStream) CompleteStream(ctx context.Context, messages []orchestrator.Message, onToken func(fragment string, accumulated string, isComplete bool) error) error {
	text, err := b.Complete(ctx, messages)
	if err != nil {
		return err
	}
	if text != "" {
		if err := onToken(text, text, false); err != nil {
			return err
		}
	}
	return onToken("", text, true)
}
