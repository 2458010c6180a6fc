package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("generation.json", "system")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "export default")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("generation.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("repair.json", "fix_component")
		assert.NotEmpty(t, prompt)
	})
}

func TestMustFormat_FillsLoadedTemplate(t *testing.T) {
	ClearCache()

	prompt := MustFormat("repair.json", "fix_not_defined", map[string]string{
		"Symbol": "FiOval",
		"Name":   "Hero",
	})
	assert.Contains(t, prompt, "FiOval")
	assert.NotContains(t, prompt, "{{.Symbol}}")
}

func TestMustFormat_PanicsOnMissingKey(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustFormat("repair.json", "nonexistent-key", nil)
	})
}

func TestFormat(t *testing.T) {
	template := "Generate the {{.Name}} section for {{.Title}}!"
	data := map[string]string{
		"Name":  "Hero",
		"Title": "Coffee Shop",
	}

	result := Format(template, data)
	assert.Equal(t, "Generate the Hero section for Coffee Shop!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestUpdatePrompts_AllIntentsPresent(t *testing.T) {
	ClearCache()

	for _, key := range []string{"decide_targets", "patch", "modify", "feature"} {
		prompt, err := Get("update.json", key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt, key)
	}
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("generation.json", "system")
	require.NoError(t, err)

	prompt2, err := Get("generation.json", "system")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
