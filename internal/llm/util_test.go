package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"score\": 85}\n```"
	assert.Equal(t, `{"score": 85}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"score\": 85}\n```"
	assert.Equal(t, `{"score": 85}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_NoFence(t *testing.T) {
	input := `{"score": 85}`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_LanguageIdentifier(t *testing.T) {
	input := "```javascript\n{\"score\": 85}\n```"
	assert.Equal(t, `{"score": 85}`, CleanJSONBlock(input))
}

func TestExtractJSONObject_SurroundingProse(t *testing.T) {
	input := `Here is the evaluation you asked for:
{"score": 72, "summary": "Good answers overall"}
Let me know if you need anything else.`
	assert.Equal(t, `{"score": 72, "summary": "Good answers overall"}`, ExtractJSONObject(input))
}

func TestExtractJSONObject_NestedObjects(t *testing.T) {
	input := `{"outer": {"inner": {"deep": 1}}, "other": 2}`
	assert.Equal(t, input, ExtractJSONObject(input))
}

func TestExtractJSONObject_BracesInsideStrings(t *testing.T) {
	input := `{"summary": "use {braces} carefully", "score": 50}`
	assert.Equal(t, input, ExtractJSONObject(input))
}

func TestExtractJSONObject_EscapedQuotes(t *testing.T) {
	input := `{"summary": "said \"hello {\" once", "score": 10}`
	assert.Equal(t, input, ExtractJSONObject(input))
}

func TestExtractJSONObject_FencedAndProse(t *testing.T) {
	input := "Sure!\n```json\n{\"questions\": []}\n```"
	assert.Equal(t, `{"questions": []}`, ExtractJSONObject(input))
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	assert.Equal(t, "", ExtractJSONObject("no json here"))
	assert.Equal(t, "", ExtractJSONObject("{unterminated"))
	assert.Equal(t, "", ExtractJSONObject(""))
}
