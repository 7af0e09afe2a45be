package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/minhyannv/pipai/pkg/conversation"
	"github.com/minhyannv/pipai/pkg/logging"
)

// fakeModel scripts GenerateContent responses in order, repeating the last
// one when the script runs out.
type fakeModel struct {
	responses []*llms.ContentResponse
	calls     [][]llms.MessageContent
	err       error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	copied := append([]llms.MessageContent(nil), messages...)
	f.calls = append(f.calls, copied)
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", fmt.Errorf("not implemented")
}

type fakeExecutor struct {
	defs   []llms.Tool
	calls  []string
	output string
}

func (f *fakeExecutor) Definitions() []llms.Tool { return f.defs }

func (f *fakeExecutor) Execute(ctx context.Context, name, arguments string) string {
	f.calls = append(f.calls, name+" "+arguments)
	return f.output
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}
}

func toolCallResponse(id, name, args string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		ToolCalls: []llms.ToolCall{{
			ID:   id,
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}}}
}

func TestCompletePlain(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("the answer")}}
	svc := NewService(model, logging.Nop())

	got, err := svc.Complete(context.Background(), Request{
		SystemPrompt: "be terse",
		History: []conversation.Message{
			{Role: conversation.RoleUser, Content: "earlier question"},
			{Role: conversation.RoleAssistant, Content: "earlier answer"},
		},
		UserMessage: "new question",
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "the answer", got)

	require.Len(t, model.calls, 1)
	sent := model.calls[0]
	require.Len(t, sent, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, sent[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, sent[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, sent[2].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, sent[3].Role)
}

func TestCompleteWithoutSystemPrompt(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("ok")}}
	svc := NewService(model, logging.Nop())

	_, err := svc.Complete(context.Background(), Request{UserMessage: "hi"}, Options{})
	require.NoError(t, err)
	require.Len(t, model.calls[0], 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.calls[0][0].Role)
}

func TestCompleteToolLoop(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_1", "search_issues", `{"query":"panic"}`),
		textResponse("found two issues"),
	}}
	exec := &fakeExecutor{
		defs: []llms.Tool{{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "search_issues",
				Description: "Search the tracker",
			},
		}},
		output: `{"ok":true,"tool":"search_issues","data":"two hits"}`,
	}
	svc := NewService(model, logging.Nop())

	got, err := svc.Complete(context.Background(), Request{UserMessage: "what broke?"}, Options{Tools: exec})
	require.NoError(t, err)
	assert.Equal(t, "found two issues", got)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, `search_issues {"query":"panic"}`, exec.calls[0])

	// Second call carries the tool round-trip: user, assistant tool call,
	// tool response.
	require.Len(t, model.calls, 2)
	second := model.calls[1]
	require.Len(t, second, 3)
	assert.Equal(t, llms.ChatMessageTypeAI, second[1].Role)
	assert.Equal(t, llms.ChatMessageTypeTool, second[2].Role)
}

func TestCompleteToolLoopCapped(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse("call_n", "spin", `{}`),
	}}
	exec := &fakeExecutor{output: `{"ok":true}`}
	svc := NewService(model, logging.Nop())

	_, err := svc.Complete(context.Background(), Request{UserMessage: "loop"}, Options{Tools: exec})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max tool turns")
	assert.Len(t, model.calls, maxToolTurns)
}

func TestCompleteNoChoices(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{{Choices: nil}}}
	svc := NewService(model, logging.Nop())

	_, err := svc.Complete(context.Background(), Request{UserMessage: "hi"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response")
}

func TestCompleteModelError(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("boom")}
	svc := NewService(model, logging.Nop())

	_, err := svc.Complete(context.Background(), Request{UserMessage: "hi"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestComposeUserMessage(t *testing.T) {
	got := ComposeUserMessage("line1\nline2\n", "what is this?")
	assert.Equal(t, "Context:\nline1\nline2\n\nPrompt: what is this?", got)

	assert.Equal(t, "just the prompt", ComposeUserMessage("", "just the prompt"))
	assert.Equal(t, "trimmed", ComposeUserMessage("   \n", " trimmed "))
}
