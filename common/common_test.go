package common

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMinMax(t *testing.T) {
	min, max := GetMinMax([]float64{3, -1, 7, 2})
	assert.Equal(t, -1.0, min)
	assert.Equal(t, 7.0, max)

	min, max = GetMinMax(nil)
	assert.True(t, math.IsInf(min, 1))
	assert.True(t, math.IsInf(max, -1))
}

func TestToFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.json")
	fleet := Fleet{{ID: 0, Name: "truck", Home: 3, Capacity: 30, CostPerKm: 5}}
	ToFile(path, fleet)

	var loaded Fleet
	require.NoError(t, ReadFile(path, &loaded))
	assert.Equal(t, fleet, loaded)
}

func TestReadFile_YAMLFleet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
- {id: 0, home: 1, capacity: 30, cost_per_km: 5}
- {id: 1, home: 2, capacity: 20, cost_per_km: 3}
`), 0644))

	var fleet Fleet
	require.NoError(t, ReadFile(path, &fleet))
	require.Len(t, fleet, 2)
	assert.Equal(t, 3.0, fleet[1].CostPerKm)
	assert.Equal(t, 30, fleet.MaxCapacity())
	assert.NoError(t, fleet.Validate())
}

func TestReadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": `), 0644))

	var tasks TaskSet
	assert.Error(t, ReadFile(path, &tasks))
}

func TestFleet_Validate(t *testing.T) {
	assert.NoError(t, Fleet{}.Validate())
	assert.Equal(t, -1, Fleet{}.MaxCapacity())
	assert.Error(t, Fleet{{ID: 1}}.Validate())
	assert.Error(t, Fleet{{ID: 0, Capacity: -1}}.Validate())
}

func TestTaskSet(t *testing.T) {
	tasks := TaskSet{
		{ID: 0, Weight: 3, Reward: 10},
		{ID: 1, Weight: 7, Reward: 5},
		{ID: 2, Weight: 3, Reward: 1},
	}
	require.NoError(t, tasks.Validate())
	assert.Equal(t, 7, tasks.MaxWeight())
	assert.Equal(t, 16.0, tasks.TotalReward())
	assert.Equal(t, []int{1, 0, 2}, tasks.ByWeight(true))
	assert.Equal(t, []int{0, 2, 1}, tasks.ByWeight(false))

	grown := tasks.With(Task{ID: 99, Weight: 1})
	assert.Len(t, tasks, 3)
	assert.Equal(t, 3, grown[3].ID)

	renumbered := TaskSet{{ID: 5, Weight: 1}, {ID: 9, Weight: 2}}.Renumber()
	assert.NoError(t, renumbered.Validate())
	assert.Equal(t, 2, renumbered[1].Weight)

	assert.Error(t, TaskSet{{ID: 1, Weight: 1}}.Validate())
	assert.Error(t, TaskSet{{ID: 0, Weight: 0}}.Validate())
}
