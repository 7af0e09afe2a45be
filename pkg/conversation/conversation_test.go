package conversation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "conversation.json"))
}

func TestStartStopLifecycle(t *testing.T) {
	st := testStore(t)

	require.Nil(t, st.Load(), "no record before start")

	rec, err := st.Start()
	require.NoError(t, err)
	assert.True(t, rec.Active)
	assert.NotEmpty(t, rec.ID)
	assert.Empty(t, rec.Messages)

	loaded := st.Load()
	require.NotNil(t, loaded)
	assert.Equal(t, rec.ID, loaded.ID)

	require.NoError(t, st.Stop())
	assert.Nil(t, st.Load(), "record removed after stop")

	// Stopping again is a no-op.
	require.NoError(t, st.Stop())
}

func TestStartResetsExistingRecord(t *testing.T) {
	st := testStore(t)

	first, err := st.Start()
	require.NoError(t, err)
	require.NoError(t, st.Append(RoleUser, "hello"))

	second, err := st.Start()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "restart issues a new session id")

	loaded := st.Load()
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Messages, "restart clears history")
}

// TestPersistsAcrossInvocations simulates two independent processes sharing
// the conversation file.
func TestPersistsAcrossInvocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversation.json")

	first := NewStore(path)
	_, err := first.Start()
	require.NoError(t, err)
	require.NoError(t, first.Append(RoleUser, "what is a goroutine?"))
	require.NoError(t, first.Append(RoleAssistant, "a lightweight thread"))

	second := NewStore(path)
	require.NoError(t, second.Append(RoleUser, "show an example"))

	rec := second.Load()
	require.NotNil(t, rec)
	history := rec.Messages
	require.Len(t, history, 3)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "what is a goroutine?", history[0].Content)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Equal(t, "show an example", history[2].Content)
}

func TestAppendWithoutActiveRecordIsNoop(t *testing.T) {
	st := testStore(t)

	require.NoError(t, st.Append(RoleUser, "dropped"))
	assert.Nil(t, st.Load())
}

func TestAppendBumpsLastMessageAt(t *testing.T) {
	st := testStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	_, err := st.Start()
	require.NoError(t, err)

	st.now = func() time.Time { return base.Add(10 * time.Minute) }
	require.NoError(t, st.Append(RoleUser, "hi"))

	loaded := st.Load()
	require.NotNil(t, loaded)
	assert.Equal(t, base.Add(10*time.Minute), loaded.LastMessageAt.UTC())
	assert.Equal(t, base, loaded.StartedAt.UTC())
}

func TestCorruptFileLoadsAsNoConversation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st := NewStore(path)
	assert.Nil(t, st.Load())
}

func TestStaleAt(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &Record{Active: true, LastMessageAt: base}

	assert.False(t, rec.StaleAt(base.Add(30*time.Minute)))
	assert.False(t, rec.StaleAt(base.Add(Timeout)), "exactly at the boundary is not stale")
	assert.True(t, rec.StaleAt(base.Add(Timeout+time.Second)))

	inactive := &Record{Active: false, LastMessageAt: base}
	assert.False(t, inactive.StaleAt(base.Add(2*time.Hour)), "inactive records never go stale")

	var nilRec *Record
	assert.False(t, nilRec.StaleAt(base))
}

func TestReadStaleChoice(t *testing.T) {
	rec := &Record{Active: true, LastMessageAt: time.Now().Add(-2 * time.Hour)}

	tests := map[string]struct {
		input string
		want  StaleChoice
	}{
		"default on empty line": {input: "\n", want: ChoiceContinue},
		"continue short":        {input: "c\n", want: ChoiceContinue},
		"continue word":         {input: "CONTINUE\n", want: ChoiceContinue},
		"restart short":         {input: "r\n", want: ChoiceRestart},
		"restart word":          {input: "reset\n", want: ChoiceRestart},
		"abort short":           {input: "A\n", want: ChoiceAbort},
		"abort quit":            {input: "q\n", want: ChoiceAbort},
		"unknown falls back":    {input: "zzz\n", want: ChoiceContinue},
		"eof without newline":   {input: "r", want: ChoiceRestart},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out strings.Builder
			got, err := readStaleChoice(rec, strings.NewReader(tt.input), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Choice [C/R/A]")
			assert.Contains(t, out.String(), "Conversation is stale")
		})
	}
}

func TestPromptStaleChoiceAutoYes(t *testing.T) {
	rec := &Record{Active: true, LastMessageAt: time.Now().Add(-2 * time.Hour)}
	var out strings.Builder

	got, err := PromptStaleChoice(rec, true, &out)
	require.NoError(t, err)
	assert.Equal(t, ChoiceContinue, got)
	assert.Empty(t, out.String(), "auto-yes asks nothing")
}

func TestResolve(t *testing.T) {
	st := testStore(t)
	_, err := st.Start()
	require.NoError(t, err)
	require.NoError(t, st.Append(RoleUser, "kept?"))
	before := st.Load()
	require.NotNil(t, before)

	kept, err := st.Resolve(ChoiceContinue)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, before.ID, kept.ID)
	assert.Len(t, kept.Messages, 1)

	fresh, err := st.Resolve(ChoiceRestart)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.NotEqual(t, before.ID, fresh.ID)
	assert.Empty(t, fresh.Messages)

	_, err = st.Resolve(ChoiceAbort)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted by user")
}
