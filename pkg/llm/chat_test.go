package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel returns a canned response for any prompt.
type fakeModel struct {
	response string
	err      error
	prompt   string
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if part, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.prompt = part.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.response}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.response, f.err
}

func TestNewChatWithConfigValidation(t *testing.T) {
	_, err := NewChatWithConfig(ChatConfig{Temperature: 3})
	assert.Error(t, err)

	_, err = NewChatWithConfig(ChatConfig{MaxTokens: -1})
	assert.Error(t, err)
}

func TestCompleteForwardsPrompt(t *testing.T) {
	model := &fakeModel{response: "antwort"}
	engine := NewChatWithModel(ChatConfig{}, model)

	out, err := engine.Complete(context.Background(), "mein prompt")

	require.NoError(t, err)
	assert.Equal(t, "antwort", out)
	assert.Equal(t, "mein prompt", model.prompt)
}

func TestCompletePropagatesError(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	engine := NewChatWithModel(ChatConfig{}, model)

	_, err := engine.Complete(context.Background(), "prompt")

	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
}
