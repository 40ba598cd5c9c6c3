package responses

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const intentsJSON = `{
  "intents": [
    {"tag": "greeting", "patterns": ["hi", "hello"], "responses": ["Hello!", "Hi there!"]},
    {"tag": "jokes", "patterns": ["tell me a joke"], "responses": ["Why did the gopher cross the road?"]},
    {"tag": "time", "patterns": ["what time is it"], "responses": []},
    {"tag": "  ", "patterns": ["ignored"], "responses": ["ignored"]}
  ]
}`

const intentsYAML = `
intents:
  - tag: goodbye
    patterns: ["bye", "see you"]
    responses: ["Goodbye!"]
`

func TestParseJSON(t *testing.T) {
	corpus, err := ParseJSON([]byte(intentsJSON))
	require.NoError(t, err)

	assert.Len(t, corpus.Intents, 3)
	assert.True(t, corpus.Table.Has("greeting"))
	assert.False(t, corpus.Table.Has("time"), "labels without replies stay out of the table")
	assert.False(t, corpus.Table.Has(""))
	assert.Equal(t, []string{"greeting", "jokes"}, corpus.Table.Labels())
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "intents.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(intentsYAML), 0o600))
	corpus, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Goodbye!"}, corpus.Table["goodbye"])

	jsonPath := filepath.Join(dir, "intents.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(intentsJSON), 0o600))
	corpus, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, corpus.Table["greeting"], 2)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestPickerIsDeterministicWithSeededSource(t *testing.T) {
	table := Table{"greeting": {"a", "b", "c", "d"}}

	p1 := NewPicker(table, rand.New(rand.NewSource(7)))
	p2 := NewPicker(table, rand.New(rand.NewSource(7)))
	for i := 0; i < 10; i++ {
		r1, ok1 := p1.Pick("greeting")
		r2, ok2 := p2.Pick("greeting")
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, r1, r2)
		assert.Contains(t, table["greeting"], r1)
	}

	_, ok := p1.Pick("missing")
	assert.False(t, ok)
	_, ok = p1.Pick("")
	assert.False(t, ok)
}
