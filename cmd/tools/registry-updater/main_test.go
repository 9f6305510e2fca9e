package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlecomte1929/rolec/internal/common/config"
	"github.com/rlecomte1929/rolec/pkg/registry"
)

func TestBuildActivities(t *testing.T) {
	activities := buildActivities("1.2.0", config.GetWorkerConfig)
	require.Len(t, activities, 2)

	rank := activities[0]
	assert.Equal(t, "rank-recommendations", rank.TaskType)
	assert.Equal(t, "30s", rank.Timeout)
	assert.Equal(t, 3, rank.Retries)
	assert.Contains(t, rank.ErrorCodes, "UNKNOWN_CATEGORY")
	assert.Contains(t, rank.ErrorCodes, "CATALOG_TIMEOUT")

	props := rank.InputSchema["properties"].(map[string]interface{})
	enum := props["category"].(map[string]interface{})["enum"].([]interface{})
	assert.Len(t, enum, 14)
	assert.Equal(t, "living_areas", enum[0])

	assert.Equal(t, "describe-categories", activities[1].TaskType)
	assert.NoError(t, (&registry.ActivityRegistry{Activities: activities}).Validate(taskTypes()))
}

func TestGenerateUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")

	require.NoError(t, generate(path, "1.0.0"))
	require.NoError(t, validate(path))

	require.NoError(t, updateActivity(path, "rank-recommendations", "retries", "5"))
	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 5, reg.Activities[0].Retries)

	assert.Error(t, updateActivity(path, "rank-recommendations", "retries", "many"))
	assert.Error(t, updateActivity(path, "missing", "status", "planned"))
	assert.Error(t, updateActivity(path, "rank-recommendations", "owner", "x"))

	require.NoError(t, generate(path, "1.1.0"))
	reg, err = registry.LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 2)
	assert.Equal(t, "1.1.0", reg.Activities[0].Version)
}
