package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_GenerationPrompt(t *testing.T) {
	prompt, err := Get("interview.json", "generate-questions")
	require.NoError(t, err)
	assert.Contains(t, prompt, "exactly 6 interview questions")
	assert.Contains(t, prompt, "{{.Resume}}")
}

func TestGet_EvaluationPrompt(t *testing.T) {
	prompt, err := Get("interview.json", "evaluate-interview")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Score the candidate 0-100")
	assert.Contains(t, prompt, "{{.Transcript}}")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("interview.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	out := Format("resume: {{.Resume}} / again: {{.Resume}}", map[string]string{"Resume": "go dev"})
	assert.Equal(t, "resume: go dev / again: go dev", out)
}

func TestFormat_UnknownPlaceholderLeftIntact(t *testing.T) {
	out := Format("{{.Missing}}", map[string]string{"Resume": "x"})
	assert.Equal(t, "{{.Missing}}", out)
}
