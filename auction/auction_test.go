package auction

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobius-scheduler/pdp/common"
	"github.com/mobius-scheduler/pdp/vrp"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fakeClock(step time.Duration) func() time.Time {
	now := epoch
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

// two cities, A (0) and B (1), 10 km apart
func twoCities(t *testing.T) *common.Topology {
	t.Helper()
	topo, err := common.NewTopology(common.TopologyConfig{
		Cities: []common.City{{ID: 0, Name: "A"}, {ID: 1, Name: "B"}},
		Roads:  []common.Road{{From: 0, To: 1, Length: 10}},
	})
	require.NoError(t, err)
	return topo
}

func fleet() common.Fleet {
	return common.Fleet{
		{ID: 0, Home: 0, Capacity: 10, CostPerKm: 1},
		{ID: 1, Home: 1, Capacity: 20, CostPerKm: 2},
	}
}

func tasks() common.TaskSet {
	return common.TaskSet{
		{ID: 0, Pickup: 0, Delivery: 1, Weight: 5, Reward: 100},
		{ID: 1, Pickup: 1, Delivery: 0, Weight: 8, Reward: 50},
	}
}

func TestOpponentModel(t *testing.T) {
	var m opponent_model
	m.observe(1, 3)
	m.observe(2, 5)
	_, ok := m.predict(4)
	assert.False(t, ok, "too few observations")

	m.observe(3, 7)
	c, k, ok := m.fit()
	require.True(t, ok)
	assert.InDelta(t, 1, c, 1e-9)
	assert.InDelta(t, 2, k, 1e-9)

	bid, ok := m.predict(4)
	require.True(t, ok)
	assert.InDelta(t, 9, bid, 1e-9)

	_, ok = m.predict(-10)
	assert.False(t, ok, "non-positive prediction")
}

func TestOpponentModel_ConstantMarginal(t *testing.T) {
	var m opponent_model
	for i := 0; i < 5; i++ {
		m.observe(4, float64(10+i))
	}
	_, _, ok := m.fit()
	assert.False(t, ok)
}

func TestNaiveBidder(t *testing.T) {
	n := &NaiveBidder{Id: 0, Topology: twoCities(t), Vehicles: fleet(), Markup: 0.5}

	bid, err := n.AskPrice(tasks()[0])
	require.NoError(t, err)
	assert.Equal(t, 15.0, bid)
	n.AuctionResult(tasks()[0], 0, []float64{bid})

	// t0 then t1 on vehicle 0: 20 km, 10 more than before
	bid, err = n.AskPrice(tasks()[1])
	require.NoError(t, err)
	assert.Equal(t, 15.0, bid)

	_, err = n.AskPrice(common.Task{ID: 7, Pickup: 0, Delivery: 1, Weight: 30})
	assert.ErrorIs(t, err, vrp.ErrInfeasible)
}

func TestHouse_NaiveBidders(t *testing.T) {
	topo := twoCities(t)
	dir := t.TempDir()
	house := House{
		Bidders: []Bidder{
			&NaiveBidder{Id: 0, Topology: topo, Vehicles: fleet()},
			&NaiveBidder{Id: 1, Topology: topo, Vehicles: fleet(), Markup: 1},
		},
		Tasks: tasks(),
		Dir:   dir,
	}
	outcomes, err := house.Run()
	require.NoError(t, err)

	require.Len(t, house.Results, 2)
	assert.Equal(t, 0, house.Results[0].Winner)
	assert.Equal(t, []float64{10, 20}, house.Results[0].Bids)
	assert.Equal(t, 0, house.Results[1].Winner)
	assert.Equal(t, []float64{10, 40}, house.Results[1].Bids)

	require.Len(t, outcomes, 2)
	assert.Equal(t, 20.0, outcomes[0].Revenue)
	assert.Equal(t, 20.0, outcomes[0].Schedule.Cost)
	assert.Equal(t, 0.0, outcomes[0].Profit)
	assert.Equal(t, []int{0, 1}, outcomes[0].Schedule.Routes[0].Tasks)
	assert.Zero(t, outcomes[1].Revenue)
	assert.Zero(t, outcomes[1].Schedule.Cost)

	bytes, err := os.ReadFile(filepath.Join(dir, "auction.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(bytes)), "\n")
	assert.Equal(t, []string{"round,task,winner,bid0,bid1", "0,0,0,10.00,20.00", "1,1,0,10.00,40.00"}, lines)
}

func TestHouse_TieAndRefusal(t *testing.T) {
	topo := twoCities(t)
	ts := append(tasks(), common.Task{ID: 2, Pickup: 0, Delivery: 1, Weight: 30})
	house := House{
		Bidders: []Bidder{
			&NaiveBidder{Id: 0, Topology: topo, Vehicles: fleet()},
			&NaiveBidder{Id: 1, Topology: topo, Vehicles: fleet()},
		},
		Tasks: ts,
	}
	_, err := house.Run()
	require.NoError(t, err)

	assert.Equal(t, 0, house.Results[0].Winner, "ties go to the lower id")
	assert.Equal(t, -1, house.Results[2].Winner)
}

func agentConfig(seed int64) Config {
	return Config{
		BidBudget:  20 * time.Millisecond,
		PlanBudget: 40 * time.Millisecond,
		Margin:     time.Millisecond,
		P:          0.8,
		Heuristic:  vrp.LARGEST,
		Seed:       seed,
		Markup:     0.1,
		Undercut:   0.1,
	}
}

func TestAgent_Bids(t *testing.T) {
	a := &Agent{Id: 0, Topology: twoCities(t), Vehicles: fleet(), Cfg: agentConfig(1), Now: fakeClock(time.Millisecond)}
	a.Init()
	require.Len(t, a.Opponent, 2)

	bid, err := a.AskPrice(tasks()[0])
	require.NoError(t, err)
	// carried alone, t0 costs at least 10
	assert.GreaterOrEqual(t, bid, 10*1.1-1e-9)

	a.AuctionResult(tasks()[0], 0, []float64{bid, 100})
	assert.Len(t, a.Won(), 1)
	assert.Positive(t, a.Cost())

	_, err = a.AskPrice(common.Task{ID: 5, Pickup: 0, Delivery: 1, Weight: 30})
	assert.ErrorIs(t, err, vrp.ErrInfeasible)

	sched, err := a.Plan()
	require.NoError(t, err)
	assert.Equal(t, 10.0, sched.Cost, "vehicle 0 carries t0 from home")
}

func TestAgent_LosesToCheaperOpponent(t *testing.T) {
	a := &Agent{Id: 0, Topology: twoCities(t), Vehicles: fleet(), Cfg: agentConfig(2), Now: fakeClock(time.Millisecond)}
	a.Init()

	_, err := a.AskPrice(tasks()[1])
	require.NoError(t, err)
	a.AuctionResult(tasks()[1], 1, []float64{50, 1})
	assert.Empty(t, a.Won())
	assert.Zero(t, a.Cost())

	sched, err := a.Plan()
	require.NoError(t, err)
	assert.Zero(t, sched.Cost)
}

func TestHouse_AgentVersusNaive(t *testing.T) {
	topo, err := common.NewTopology(common.TopologyConfig{
		Cities: []common.City{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		Roads: []common.Road{
			{From: 0, To: 1, Length: 4},
			{From: 1, To: 2, Length: 6},
			{From: 2, To: 3, Length: 5},
			{From: 3, To: 4, Length: 3},
			{From: 4, To: 0, Length: 7},
			{From: 1, To: 3, Length: 8},
		},
	})
	require.NoError(t, err)

	var ts common.TaskSet
	for i := 0; i < 8; i++ {
		ts = append(ts, common.Task{ID: i, Pickup: int64(i % 5), Delivery: int64((i*3 + 1) % 5), Weight: 1 + i%4})
	}
	for i := range ts {
		if ts[i].Pickup == ts[i].Delivery {
			ts[i].Delivery = (ts[i].Delivery + 1) % 5
		}
	}

	clock := fakeClock(time.Millisecond)
	agent := &Agent{Id: 0, Topology: topo, Vehicles: fleet(), Cfg: agentConfig(3), Now: clock}
	agent.Init()
	naive := &NaiveBidder{Id: 1, Topology: topo, Vehicles: fleet(), Markup: 0.1}

	house := House{Bidders: []Bidder{agent, naive}, Tasks: ts}
	outcomes, err := house.Run()
	require.NoError(t, err)

	won := make([]int, 2)
	for _, r := range house.Results {
		require.GreaterOrEqual(t, r.Winner, 0)
		won[r.Winner]++
	}
	assert.Equal(t, len(agent.Won()), won[0])
	assert.Equal(t, len(ts), won[0]+won[1])

	for i, o := range outcomes {
		var planned []int
		for _, r := range o.Schedule.Routes {
			planned = append(planned, r.Tasks...)
		}
		assert.Len(t, planned, won[i])
		assert.InDelta(t, o.Revenue-o.Schedule.Cost, o.Profit, 1e-9)
	}
}

func TestAgent_RefusedRoundNotObserved(t *testing.T) {
	a := &Agent{
		Id:       0,
		Topology: twoCities(t),
		Vehicles: common.Fleet{{ID: 0, Home: 0, Capacity: 10, CostPerKm: 1}},
		Opponent: common.Fleet{{ID: 0, Home: 1, Capacity: 50, CostPerKm: 1}},
		Cfg:      agentConfig(4),
		Now:      fakeClock(time.Millisecond),
	}
	a.Init()

	_, err := a.AskPrice(tasks()[0])
	require.NoError(t, err)
	a.AuctionResult(tasks()[0], 1, []float64{12, 50})
	require.Equal(t, []float64{50}, a.model.bids)
	require.Equal(t, 1, a.opp_state.NumTasks())

	// own fleet cannot carry it; the opponent wins it
	heavy := common.Task{ID: 1, Pickup: 1, Delivery: 0, Weight: 30}
	_, err = a.AskPrice(heavy)
	assert.ErrorIs(t, err, vrp.ErrInfeasible)
	a.AuctionResult(heavy, 1, []float64{math.Inf(1), 999})

	assert.Equal(t, []float64{50}, a.model.bids)
	assert.Len(t, a.model.marginals, 1)
	assert.Equal(t, 1, a.opp_state.NumTasks())
	assert.Empty(t, a.Won())
}

func TestAgent_EmptyTopology(t *testing.T) {
	topo, err := common.NewTopology(common.TopologyConfig{})
	require.NoError(t, err)

	a := &Agent{Id: 0, Topology: topo, Vehicles: fleet(), Cfg: agentConfig(5), Now: fakeClock(time.Millisecond)}
	require.NotPanics(t, a.Init)
	assert.Equal(t, fleet(), a.Opponent)
}

func TestHouse_UnwritableDir(t *testing.T) {
	topo := twoCities(t)
	house := House{
		Bidders: []Bidder{&NaiveBidder{Id: 0, Topology: topo, Vehicles: fleet()}},
		Tasks:   tasks(),
		Dir:     filepath.Join(t.TempDir(), "missing"),
	}
	_, err := house.Run()
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, house.Results)
}
