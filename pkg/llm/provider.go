package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultProvider is assumed for bare model names.
const DefaultProvider = "openai"

// providerAliases maps identifier prefixes to providers. "gemini" is an
// accepted spelling for the Google provider.
var providerAliases = map[string]string{
	"openai":    "openai",
	"anthropic": "anthropic",
	"googleai":  "googleai",
	"gemini":    "googleai",
	"mistral":   "mistral",
	"ollama":    "ollama",
}

// ParseModelID splits a "provider/model" identifier. A bare name implies
// the default provider; an unknown prefix is an error.
func ParseModelID(id string) (provider, name string, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", fmt.Errorf("empty model identifier")
	}
	idx := strings.Index(id, "/")
	if idx < 0 {
		return DefaultProvider, id, nil
	}
	prefix := strings.ToLower(id[:idx])
	name = id[idx+1:]
	if name == "" {
		return "", "", fmt.Errorf("model identifier %q has no model name", id)
	}
	p, ok := providerAliases[prefix]
	if !ok {
		return "", "", fmt.Errorf("unsupported provider %q (supported: openai, anthropic, googleai, mistral, ollama)", prefix)
	}
	return p, name, nil
}

// NewModel constructs the provider-backed client for a model identifier.
// Credentials come from the environment; a missing key is an error naming
// the variable.
func NewModel(ctx context.Context, id string) (llms.Model, error) {
	provider, name, err := ParseModelID(id)
	if err != nil {
		return nil, err
	}

	switch provider {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		opts := []openai.Option{openai.WithToken(key), openai.WithModel(name)}
		if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
			opts = append(opts, openai.WithBaseURL(base))
		}
		return openai.New(opts...)

	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return anthropic.New(anthropic.WithToken(key), anthropic.WithModel(name))

	case "googleai":
		key := os.Getenv("GOOGLE_API_KEY")
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
		}
		return googleai.New(ctx, googleai.WithAPIKey(key), googleai.WithDefaultModel(name))

	case "mistral":
		key := os.Getenv("MISTRAL_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("MISTRAL_API_KEY is not set")
		}
		return mistral.New(mistral.WithAPIKey(key), mistral.WithModel(name))

	case "ollama":
		opts := []ollama.Option{ollama.WithModel(name)}
		if host := os.Getenv("OLLAMA_HOST"); host != "" {
			opts = append(opts, ollama.WithServerURL(host))
		}
		return ollama.New(opts...)

	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}
