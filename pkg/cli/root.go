// Package cli assembles the pipai command: the flag surface, dispatch
// across management actions, and the completion flow.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/minhyannv/pipai/pkg/config"
	"github.com/minhyannv/pipai/pkg/logging"
	"github.com/minhyannv/pipai/pkg/prompts"
	"github.com/minhyannv/pipai/pkg/render"
)

// Version is set at build time via ldflags.
var Version = "dev"

// reservedFlagNames are flag names cobra claims for itself; preset files
// may not shadow them.
var reservedFlagNames = map[string]bool{
	"help":    true,
	"version": true,
}

// rootOptions holds the flag values for one invocation.
type rootOptions struct {
	paths   config.Paths
	presets []*prompts.Preset

	model        string
	modelsFilter string
	listPrompts  bool
	createPrompt string
	editPrompt   string
	deletePrompt string
	startConv    bool
	stopConv     bool
	noConv       bool
	markdown     bool
	noMarkdown   bool
	mcpTools     bool
	setConfig    []string
	showConfig   bool
	verbose      bool
	debug        bool

	// presetFlags maps preset names to their generated flag values.
	presetFlags map[string]*bool
}

// NewRootCmd assembles the root command against the default config
// directory.
func NewRootCmd() (*cobra.Command, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, err
	}
	cmd, _, err := newRootCmd(paths)
	return cmd, err
}

func newRootCmd(paths config.Paths) (*cobra.Command, *rootOptions, error) {
	if err := paths.Ensure(); err != nil {
		return nil, nil, err
	}

	// Presets register flags, so they load before parsing. Verbosity
	// flags are not parsed yet; warnings still surface.
	bootLogger := logging.NewStderr(logging.Options{})
	presets, err := prompts.Load(paths.PromptsDir, bootLogger)
	if err != nil {
		return nil, nil, err
	}

	o := &rootOptions{paths: paths, presets: presets}

	cmd := &cobra.Command{
		Use:   "pipai [flags] [prompt...]",
		Short: "Pipe command output into an LLM",
		Long: `pipai sends piped context plus a prompt to an LLM.

Piped stdin becomes the context, the positional arguments become the
prompt, and the response prints to stdout. Prompt presets, persistent
conversations, and MCP tools are layered on top.`,
		Example: `  # Summarize a command's output
  git diff | pipai --model openai/gpt-4o "Summarize these changes"

  # Set a default model once, then pipe away
  pipai --set-config DEFAULT_LLM=anthropic/claude-3-5-sonnet-20241022
  dmesg | pipai "Any hardware problems here?"

  # Hold a conversation across invocations
  pipai --start-conversation "Plan a refactor of this module"
  pipai "Now write the first step"`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		RunE:          o.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&o.model, "model", "", "Model for this invocation (overrides DEFAULT_LLM)")
	flags.StringVar(&o.modelsFilter, "models", "", "List known models, optionally filtered by substring")
	flags.Lookup("models").NoOptDefVal = "*"
	flags.BoolVar(&o.listPrompts, "prompts", false, "List prompt presets")
	flags.StringVar(&o.createPrompt, "create-prompt", "", "Create a prompt preset and open it in $EDITOR")
	flags.StringVar(&o.editPrompt, "edit-prompt", "", "Edit a prompt preset in $EDITOR")
	flags.StringVar(&o.deletePrompt, "delete-prompt", "", "Delete a prompt preset")
	flags.BoolVar(&o.startConv, "start-conversation", false, "Start a fresh conversation")
	flags.BoolVar(&o.stopConv, "stop-conversation", false, "Stop the active conversation")
	flags.BoolVar(&o.noConv, "no-conversation", false, "Ignore the active conversation for this invocation")
	flags.BoolVar(&o.markdown, "markdown", false, "Force Markdown rendering on")
	flags.BoolVar(&o.noMarkdown, "no-markdown", false, "Force Markdown rendering off")
	flags.BoolVar(&o.mcpTools, "enable-mcp-tools", false, "Forward MCP tools for this invocation")
	flags.StringArrayVar(&o.setConfig, "set-config", nil, "Set a configuration key (KEY=VALUE, repeatable)")
	flags.BoolVar(&o.showConfig, "show-config", false, "Print the effective configuration")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose logging")
	flags.BoolVar(&o.debug, "debug", false, "Debug logging")

	o.registerPresetFlags(flags, bootLogger)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	return cmd, o, nil
}

// registerPresetFlags adds one boolean flag per preset; the summary is the
// usage text. Presets shadowing a built-in flag are skipped.
func (o *rootOptions) registerPresetFlags(flags *pflag.FlagSet, logger *zap.SugaredLogger) {
	o.presetFlags = make(map[string]*bool, len(o.presets))
	for _, p := range o.presets {
		if reservedFlagNames[p.Name] || flags.Lookup(p.Name) != nil {
			logger.Warnf("prompt preset %s collides with a built-in flag, skipping", p.Name)
			continue
		}
		o.presetFlags[p.Name] = flags.Bool(p.Name, false, p.Summary)
	}
}

// Execute builds and runs the root command, returning the process exit
// code. API keys may live in a .env file next to the caller.
func Execute() int {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, err := NewRootCmd()
	if err != nil {
		fmt.Fprintln(os.Stderr, render.Error("Error: "+err.Error()))
		return ExitFailure
	}
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, render.Error("Error: "+err.Error()))
		return ExitCode(err)
	}
	return ExitSuccess
}

// selectedPresets returns the presets whose flags were set, in listing
// order (lexical by name).
func (o *rootOptions) selectedPresets() []*prompts.Preset {
	var selected []*prompts.Preset
	for _, p := range o.presets {
		if v, ok := o.presetFlags[p.Name]; ok && *v {
			selected = append(selected, p)
		}
	}
	return selected
}
