package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minhyannv/pipai/pkg/config"
	"github.com/minhyannv/pipai/pkg/conversation"
	"github.com/minhyannv/pipai/pkg/llm"
	"github.com/minhyannv/pipai/pkg/mcp"
	"github.com/minhyannv/pipai/pkg/prompts"
	"github.com/minhyannv/pipai/pkg/render"
)

// runCompletion sends one request to the configured model and prints the
// reply. Piped stdin becomes context, active conversation history is
// replayed, and MCP tools are attached when enabled.
func (o *rootOptions) runCompletion(cmd *cobra.Command, settings *config.Settings, store *conversation.Store, promptText string, logger *zap.SugaredLogger) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	modelID := o.model
	if modelID == "" {
		modelID = settings.DefaultModel
	}
	if modelID == "" {
		return usageErrorf("no model configured: pass --model or set DEFAULT_LLM")
	}

	contextText, err := readStdinContext(cmd)
	if err != nil {
		return err
	}
	userMessage := llm.ComposeUserMessage(contextText, promptText)

	var rec *conversation.Record
	if !o.noConv {
		rec = store.Load()
		if rec.StaleAt(time.Now()) {
			choice, err := conversation.PromptStaleChoice(rec, settings.AutoYes, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if rec, err = store.Resolve(choice); err != nil {
				return err
			}
		}
	}

	req := llm.Request{UserMessage: userMessage}
	if selected := o.selectedPresets(); len(selected) > 0 {
		req.SystemPrompt = prompts.JoinTemplates(selected)
	}
	if rec != nil && rec.Active {
		req.History = rec.Messages
	}

	model, err := llm.NewModel(ctx, modelID)
	if err != nil {
		return err
	}
	service := llm.NewService(model, logger)

	var opts llm.Options
	if settings.MCPTools || o.mcpTools {
		bridge, err := o.connectTools(ctx, logger)
		if err != nil {
			return err
		}
		if bridge != nil {
			defer func() {
				if err := bridge.Close(); err != nil {
					logger.Warnf("shutting down MCP servers: %v", err)
				}
			}()
			if len(bridge.Definitions()) > 0 {
				opts.Tools = bridge
			}
		}
	}

	terminal := render.DetectTerminal()
	markdownOn := settings.Markdown
	if o.markdown {
		markdownOn = true
	}
	if o.noMarkdown {
		markdownOn = false
	}

	var reply string
	if markdownOn && terminal.IsTTY {
		sp := render.StartSpinner(terminal, render.Muted("Waiting for "+modelID))
		reply, err = service.Complete(ctx, req, opts)
		sp.Stop()
		if err != nil {
			return err
		}
		fmt.Fprint(out, render.NewMarkdown(terminal).Render(reply))
	} else {
		streamed := false
		if opts.Tools == nil {
			streamed = true
			opts.Stream = func(_ context.Context, chunk []byte) error {
				_, err := out.Write(chunk)
				return err
			}
		}
		reply, err = service.Complete(ctx, req, opts)
		if err != nil {
			return err
		}
		if !streamed {
			fmt.Fprint(out, reply)
		}
		if !strings.HasSuffix(reply, "\n") {
			fmt.Fprintln(out)
		}
	}

	if !o.noConv {
		if err := store.Append(conversation.RoleUser, userMessage); err != nil {
			return err
		}
		if err := store.Append(conversation.RoleAssistant, reply); err != nil {
			return err
		}
	}
	return nil
}

// readStdinContext drains piped stdin. An interactive stdin means no
// context was piped in.
func readStdinContext(cmd *cobra.Command) (string, error) {
	if render.StdinIsTerminal() {
		return "", nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// connectTools starts the configured MCP servers. A nil bridge with no
// error means tools were requested but none are configured.
func (o *rootOptions) connectTools(ctx context.Context, logger *zap.SugaredLogger) (*mcp.Bridge, error) {
	configs, err := mcp.LoadServerConfigs(o.paths.MCPServersFile)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		logger.Warnf("MCP tools enabled but no servers configured in %s", o.paths.MCPServersFile)
		return nil, nil
	}
	return mcp.Connect(ctx, configs, logger), nil
}
