package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minhyannv/pipai/pkg/config"
	"github.com/minhyannv/pipai/pkg/conversation"
	"github.com/minhyannv/pipai/pkg/llm"
	"github.com/minhyannv/pipai/pkg/logging"
	"github.com/minhyannv/pipai/pkg/prompts"
)

// run dispatches one invocation. Management actions run in a fixed
// precedence and exit; anything left over is a completion.
func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	logger := logging.NewStderr(logging.Options{Verbose: o.verbose, Debug: o.debug})
	defer func() { _ = logger.Sync() }()

	flags := cmd.Flags()
	if flags.Changed("model") && flags.Changed("models") {
		return usageErrorf("--model and --models are mutually exclusive")
	}
	if o.markdown && o.noMarkdown {
		return usageErrorf("--markdown and --no-markdown are mutually exclusive")
	}

	settings, err := config.Load(o.paths, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	switch {
	case o.showConfig:
		fmt.Fprint(out, settings.Show())
		return nil
	case len(o.setConfig) > 0:
		return o.runSetConfig(out)
	case flags.Changed("models"):
		return o.runListModels(out, args)
	case o.listPrompts:
		fmt.Fprint(out, prompts.FormatList(o.presets))
		return nil
	case o.createPrompt != "":
		if err := prompts.Create(o.paths.PromptsDir, o.createPrompt, logger); err != nil {
			return err
		}
		fmt.Fprintf(out, "Created prompt %q\n", o.createPrompt)
		return nil
	case o.editPrompt != "":
		if err := prompts.Edit(o.paths.PromptsDir, o.editPrompt, logger); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated prompt %q\n", o.editPrompt)
		return nil
	case o.deletePrompt != "":
		if err := prompts.Delete(o.paths.PromptsDir, o.deletePrompt, logger); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted prompt %q\n", o.deletePrompt)
		return nil
	}

	store := conversation.NewStore(o.paths.ConversationFile)
	promptText := strings.TrimSpace(strings.Join(args, " "))

	if o.startConv {
		if _, err := store.Start(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Started a new conversation.")
		if promptText == "" {
			return nil
		}
	}
	if o.stopConv {
		if err := store.Stop(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Stopped the active conversation.")
		if promptText == "" {
			return nil
		}
	}

	if promptText == "" {
		if flags.Changed("model") {
			return usageErrorf("a prompt is required when using --model")
		}
		return cmd.Help()
	}

	return o.runCompletion(cmd, settings, store, promptText, logger)
}

// runSetConfig validates and persists each KEY=VALUE assignment in order,
// echoing the canonical value that was written.
func (o *rootOptions) runSetConfig(out io.Writer) error {
	for _, assignment := range o.setConfig {
		key, value, err := config.ParseAssignmentArg(assignment)
		if err != nil {
			return &usageError{err: err}
		}
		canonical, err := config.ValidateValue(key, value)
		if err != nil {
			return &usageError{err: err}
		}
		if err := config.Set(o.paths, key, canonical); err != nil {
			return err
		}
		fmt.Fprintf(out, "Set %s=%s\n", key, canonical)
	}
	return nil
}

// runListModels prints the model registry. The filter comes from
// --models=FILTER or, after a bare --models, the first positional
// argument.
func (o *rootOptions) runListModels(out io.Writer, args []string) error {
	catalog, err := llm.LoadCatalog()
	if err != nil {
		return err
	}

	filter := o.modelsFilter
	if filter == "*" {
		filter = ""
		if len(args) > 0 {
			filter = args[0]
		}
	}
	fmt.Fprint(out, llm.FormatModelList(catalog.Filter(filter), filter))
	return nil
}
