// Package prompts serves the LLM prompt templates embedded in the binary.
// Each JSON file maps prompt keys to template text; placeholders use the
// {{.Key}} form and are filled by Format or MustFormat.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// files holds each prompt file parsed once.
var (
	files   = make(map[string]map[string]string)
	filesMu sync.RWMutex
)

// Get retrieves the template for key from filename (e.g. "repair.json").
func Get(filename, key string) (string, error) {
	prompts, err := load(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts the binary cannot run without; a missing file
// or key is a packaging bug, so it panics.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// MustFormat loads the template for key and fills its placeholders in one
// step. Nearly every caller wants exactly this.
func MustFormat(filename, key string, data map[string]string) string {
	return Format(MustGet(filename, key), data)
}

// Format replaces {{.Key}} placeholders with values from data. Keys absent
// from data are left in place.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}

func load(filename string) (map[string]string, error) {
	filesMu.RLock()
	prompts, ok := files[filename]
	filesMu.RUnlock()
	if ok {
		return prompts, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	filesMu.Lock()
	files[filename] = prompts
	filesMu.Unlock()
	return prompts, nil
}

// ClearCache drops the parsed files. Only tests need it.
func ClearCache() {
	filesMu.Lock()
	files = make(map[string]map[string]string)
	filesMu.Unlock()
}
