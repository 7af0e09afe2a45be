// Package mcp connects configured MCP servers over stdio and exposes
// their tools to the completion call.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const (
	clientName    = "pipai"
	clientVersion = "0.1.0"

	// toolRetries is the total attempts per tool call; transient stdio
	// failures get one more chance after toolRetryDelay.
	toolRetries    = 2
	toolRetryDelay = time.Second
)

// toolCaller is the slice of the MCP client the bridge uses.
type toolCaller interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// session is one connected server and the tools it advertised.
type session struct {
	name   string
	client toolCaller
	tools  []mcp.Tool
}

// Bridge manages server connections and routes tool calls to the first
// server advertising the requested tool.
type Bridge struct {
	sessions   []*session
	logger     *zap.SugaredLogger
	retryDelay time.Duration
}

// Connect starts every configured server, runs the initialize handshake,
// and discovers tools. Servers that fail to start are skipped with a
// warning so one broken descriptor does not take the rest down.
func Connect(ctx context.Context, configs map[string]ServerConfig, logger *zap.SugaredLogger) *Bridge {
	b := &Bridge{logger: logger, retryDelay: toolRetryDelay}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sess, err := connectServer(ctx, name, configs[name])
		if err != nil {
			logger.Warnf("skipping MCP server %s: %v", name, err)
			continue
		}
		logger.Debugf("connected to MCP server %s (%d tools)", name, len(sess.tools))
		b.sessions = append(b.sessions, sess)
	}
	return b
}

func connectServer(ctx context.Context, name string, cfg ServerConfig) (*session, error) {
	command, err := resolveCommand(cfg.Command)
	if err != nil {
		return nil, err
	}

	env := make([]string, 0, len(cfg.Env))
	for k, v := range cfg.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	cli, err := client.NewStdioMCPClient(command, env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("starting server: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		cli.Close()
		return nil, fmt.Errorf("initialize handshake: %w", err)
	}

	toolList, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	return &session{name: name, client: cli, tools: toolList.Tools}, nil
}

// Definitions converts the discovered tools into function definitions for
// the model. When two servers advertise the same name, the first
// connected server keeps it.
func (b *Bridge) Definitions() []llms.Tool {
	seen := make(map[string]bool)
	var defs []llms.Tool
	for _, sess := range b.sessions {
		for _, tool := range sess.tools {
			if seen[tool.Name] {
				b.logger.Debugf("tool %s already registered, ignoring copy from %s", tool.Name, sess.name)
				continue
			}
			seen[tool.Name] = true
			defs = append(defs, llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.InputSchema,
				},
			})
		}
	}
	return defs
}

// toolResult is the wrapper sent back to the model after tool execution.
type toolResult struct {
	OK   bool   `json:"ok"`
	Tool string `json:"tool,omitempty"`
	Data any    `json:"data,omitempty"`
	Err  string `json:"error,omitempty"`
}

// Execute runs one tool call and returns the JSON wrapper for the model.
// Failures are reported inside the wrapper rather than aborting the
// completion, so the model can react to them.
func (b *Bridge) Execute(ctx context.Context, name, arguments string) string {
	select {
	case <-ctx.Done():
		return marshalToolResult(name, nil, ctx.Err())
	default:
	}

	args := map[string]any{}
	if trimmed := strings.TrimSpace(arguments); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return marshalToolResult(name, nil, fmt.Errorf("invalid tool arguments: %w", err))
		}
	}

	sess := b.findSession(name)
	if sess == nil {
		return marshalToolResult(name, nil, fmt.Errorf("no server found with tool: %s", name))
	}

	b.logger.Debugf("executing tool %s on server %s", name, sess.name)
	result, err := b.callTool(ctx, sess, name, args)
	if err != nil {
		return marshalToolResult(name, nil, err)
	}

	text := textFromResult(result)
	if result.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return marshalToolResult(name, nil, errors.New(text))
	}
	return marshalToolResult(name, text, nil)
}

// Close shuts down every connected server.
func (b *Bridge) Close() error {
	var errs []error
	for _, sess := range b.sessions {
		if err := sess.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", sess.name, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bridge) findSession(name string) *session {
	for _, sess := range b.sessions {
		for _, tool := range sess.tools {
			if tool.Name == name {
				return sess
			}
		}
	}
	return nil
}

func (b *Bridge) callTool(ctx context.Context, sess *session, name string, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	var lastErr error
	for attempt := 1; attempt <= toolRetries; attempt++ {
		result, err := sess.client.CallTool(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		b.logger.Warnf("tool %s failed on %s (attempt %d of %d): %v", name, sess.name, attempt, toolRetries, err)
		if attempt < toolRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.retryDelay):
			}
		}
	}
	return nil, lastErr
}

// textFromResult joins the text parts of a tool result. Non-text content
// is dropped.
func textFromResult(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// marshalToolResult encodes a tool result as JSON for the model.
func marshalToolResult(tool string, data any, err error) string {
	res := toolResult{OK: err == nil, Tool: tool, Data: data}
	if err != nil {
		res.Err = err.Error()
	}
	payload, marshalErr := json.Marshal(res)
	if marshalErr != nil {
		return fmt.Sprintf(`{"ok":false,"tool":%q,"error":%q}`, tool, marshalErr.Error())
	}
	return string(payload)
}
