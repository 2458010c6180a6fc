package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", nullIfEmpty("x"))
}

func TestRunJSONShape(t *testing.T) {
	run := Run{ProjectName: "mario-pizza", Title: "Mario's Pizza", Strategy: "react-sections", Kind: KindBuild, Status: StatusRunning}
	data, err := json.Marshal(run)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "mario-pizza", decoded["project_name"])
	assert.Equal(t, "build", decoded["kind"])
	assert.NotContains(t, decoded, "completed_at", "nil completion omitted")
}

func TestRunFiltersZeroValueMeansUnfiltered(t *testing.T) {
	var f RunFilters
	assert.Empty(t, f.ProjectName)
	assert.Empty(t, f.Status)
	assert.Zero(t, f.Limit)
}
