package vrp

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mobius-scheduler/pdp/common"
)

// clock advancing by step on every call
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	now := start.Add(-step)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

// two cities, A (0) and B (1), 10 km apart
func twoCityTopology(t *testing.T) *common.Topology {
	t.Helper()
	topo, err := common.NewTopology(common.TopologyConfig{
		Cities: []common.City{{ID: 0, Name: "A"}, {ID: 1, Name: "B"}},
		Roads:  []common.Road{{From: 0, To: 1, Length: 10}},
	})
	require.NoError(t, err)
	return topo
}

// fleet and tasks of the A-B scenario
func twoCityScenario() (common.Fleet, common.TaskSet) {
	vehicles := common.Fleet{
		{ID: 0, Home: 0, Capacity: 10, CostPerKm: 1},
		{ID: 1, Home: 1, Capacity: 20, CostPerKm: 2},
	}
	tasks := common.TaskSet{
		{ID: 0, Pickup: 0, Delivery: 1, Weight: 5, Reward: 100},
		{ID: 1, Pickup: 1, Delivery: 0, Weight: 8, Reward: 50},
	}
	return vehicles, tasks
}

// ring of n cities with chords, unit-ish road lengths
func ringTopology(t *testing.T, n int) *common.Topology {
	t.Helper()
	cfg := common.TopologyConfig{}
	for i := 0; i < n; i++ {
		cfg.Cities = append(cfg.Cities, common.City{ID: int64(i)})
	}
	for i := 0; i < n; i++ {
		cfg.Roads = append(cfg.Roads, common.Road{From: int64(i), To: int64((i + 1) % n), Length: float64(3 + i%4)})
	}
	cfg.Roads = append(cfg.Roads, common.Road{From: 0, To: int64(n / 2), Length: 7})
	topo, err := common.NewTopology(cfg)
	require.NoError(t, err)
	return topo
}

func randomInstance(n, m int, capacity int, seed int64, cities int) (common.Fleet, common.TaskSet) {
	rng := rand.New(rand.NewSource(seed))
	vehicles := make(common.Fleet, m)
	for i := range vehicles {
		vehicles[i] = common.Vehicle{
			ID:        i,
			Home:      int64(rng.Intn(cities)),
			Capacity:  capacity + i,
			CostPerKm: float64(1 + rng.Intn(3)),
		}
	}
	tasks := make(common.TaskSet, n)
	for i := range tasks {
		src := int64(rng.Intn(cities))
		dst := (src + 1 + int64(rng.Intn(cities-1))) % int64(cities)
		tasks[i] = common.Task{ID: i, Pickup: src, Delivery: dst, Weight: 1 + rng.Intn(capacity), Reward: 10}
	}
	return vehicles, tasks
}

// every assigned task is picked up exactly once, then delivered exactly once
func requireChainsConsistent(t *testing.T, s *State) {
	t.Helper()
	require.NoError(t, s.Validate())
	seen := make(map[int]int)
	for v, chain := range s.Materialize() {
		for _, a := range chain {
			require.Equal(t, v, s.VehicleOf(a.Task))
			if a.Kind == PICKUP {
				require.Equal(t, 0, seen[a.Task], "pickup of %d repeated", a.Task)
			} else {
				require.Equal(t, 1, seen[a.Task], "delivery of %d before pickup", a.Task)
			}
			seen[a.Task]++
		}
	}
	for task := 0; task < s.NumTasks(); task++ {
		if s.Assigned(task) {
			require.Equal(t, 2, seen[task])
		} else {
			require.Equal(t, 0, seen[task])
		}
	}
}
