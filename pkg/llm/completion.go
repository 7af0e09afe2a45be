package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/minhyannv/pipai/pkg/conversation"
)

// maxToolTurns caps the tool-call loop for one invocation.
const maxToolTurns = 8

// Request carries one assembled completion call.
type Request struct {
	SystemPrompt string
	History      []conversation.Message
	UserMessage  string
}

// ToolExecutor bridges model tool calls to their implementations.
type ToolExecutor interface {
	Definitions() []llms.Tool
	Execute(ctx context.Context, name, arguments string) string
}

// Options tune a completion call. Stream receives raw chunks as they
// arrive; it is only honored when no tools are in play, since tool turns
// have no displayable prefix.
type Options struct {
	Stream func(ctx context.Context, chunk []byte) error
	Tools  ToolExecutor
}

// Service runs completions against one model.
type Service struct {
	model  llms.Model
	logger *zap.SugaredLogger
}

// NewService wraps a constructed model client.
func NewService(model llms.Model, logger *zap.SugaredLogger) *Service {
	return &Service{model: model, logger: logger}
}

// Complete sends the request and follows tool calls until the model
// answers with text or the turn cap is hit. Returns the final assistant
// text.
func (s *Service) Complete(ctx context.Context, req Request, opts Options) (string, error) {
	messages := buildMessages(req)

	var tools []llms.Tool
	if opts.Tools != nil {
		tools = opts.Tools.Definitions()
	}

	var callOpts []llms.CallOption
	if len(tools) > 0 {
		callOpts = append(callOpts, llms.WithTools(tools))
	} else if opts.Stream != nil {
		callOpts = append(callOpts, llms.WithStreamingFunc(opts.Stream))
	}

	var lastContent string
	for turn := 0; turn < maxToolTurns; turn++ {
		s.logger.Debugf("completion: turn=%d/%d messages=%d", turn+1, maxToolTurns, len(messages))

		resp, err := s.model.GenerateContent(ctx, messages, callOpts...)
		if err != nil {
			return "", fmt.Errorf("generating completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no response from model")
		}
		choice := resp.Choices[0]
		if strings.TrimSpace(choice.Content) != "" {
			lastContent = choice.Content
		}

		if len(choice.ToolCalls) == 0 || opts.Tools == nil {
			return lastContent, nil
		}

		s.logger.Debugf("completion: model requested %d tool call(s)", len(choice.ToolCalls))
		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, tc)
		}
		messages = append(messages, assistant)

		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			output := opts.Tools.Execute(ctx, tc.FunctionCall.Name, tc.FunctionCall.Arguments)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    output,
				}},
			})
		}
	}

	if lastContent == "" {
		return "", fmt.Errorf("max tool turns reached without assistant content")
	}
	return lastContent, nil
}

// buildMessages assembles the wire message list: system prompt first, then
// history, then the user message.
func buildMessages(req Request) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	for _, m := range req.History {
		switch m.Role {
		case conversation.RoleAssistant:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		case conversation.RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		default:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		}
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.UserMessage))
	return messages
}

// ComposeUserMessage combines piped context with the user's prompt. With
// no context the prompt stands alone.
func ComposeUserMessage(context, prompt string) string {
	context = strings.TrimSpace(context)
	prompt = strings.TrimSpace(prompt)
	if context == "" {
		return prompt
	}
	return fmt.Sprintf("Context:\n%s\n\nPrompt: %s", context, prompt)
}
