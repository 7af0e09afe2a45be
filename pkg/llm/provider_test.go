package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelID(t *testing.T) {
	tests := map[string]struct {
		id           string
		wantProvider string
		wantName     string
		wantErr      bool
	}{
		"bare name uses default":  {id: "gpt-4o", wantProvider: "openai", wantName: "gpt-4o"},
		"openai prefixed":         {id: "openai/gpt-4o-mini", wantProvider: "openai", wantName: "gpt-4o-mini"},
		"anthropic prefixed":      {id: "anthropic/claude-3-5-haiku-20241022", wantProvider: "anthropic", wantName: "claude-3-5-haiku-20241022"},
		"gemini alias":            {id: "gemini/gemini-2.0-flash", wantProvider: "googleai", wantName: "gemini-2.0-flash"},
		"ollama prefixed":         {id: "ollama/llama3.1", wantProvider: "ollama", wantName: "llama3.1"},
		"provider case-insensitive": {id: "Mistral/mistral-small-latest", wantProvider: "mistral", wantName: "mistral-small-latest"},
		"unknown provider":        {id: "azure/gpt-4o", wantErr: true},
		"empty identifier":        {id: "  ", wantErr: true},
		"prefix without name":     {id: "openai/", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			provider, model, err := ParseModelID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, provider)
			assert.Equal(t, tt.wantName, model)
		})
	}
}

func TestNewModelMissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	ctx := context.Background()

	_, err := NewModel(ctx, "gpt-4o")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	_, err = NewModel(ctx, "anthropic/claude-3-opus-20240229")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	_, err = NewModel(ctx, "mistral/mistral-large-latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISTRAL_API_KEY")

	_, err = NewModel(ctx, "googleai/gemini-1.5-pro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestNewModelConstruction(t *testing.T) {
	ctx := context.Background()

	// Ollama needs no credentials.
	model, err := NewModel(ctx, "ollama/llama3.2")
	require.NoError(t, err)
	assert.NotNil(t, model)

	t.Setenv("OPENAI_API_KEY", "test-key")
	model, err = NewModel(ctx, "gpt-4o")
	require.NoError(t, err)
	assert.NotNil(t, model)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	model, err = NewModel(ctx, "anthropic/claude-3-5-sonnet-20241022")
	require.NoError(t, err)
	assert.NotNil(t, model)
}

func TestNewModelUnknownProvider(t *testing.T) {
	_, err := NewModel(context.Background(), "bedrock/anthropic.claude-v2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}
