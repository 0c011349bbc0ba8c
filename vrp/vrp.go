package vrp

import (
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
	"time"
)

// topology able to produce concrete paths
type PathTopology interface {
	Topology
	PathTo(a, b int64) []int64
}

const (
	STEP_MOVE     = "move"
	STEP_PICKUP   = "pickup"
	STEP_DELIVERY = "delivery"
)

// single step of a vehicle plan
type Step struct {
	Kind string `json:"kind"`
	City int64  `json:"city"`
	Task int    `json:"task"`
}

func (s Step) String() string {
	if s.Kind == STEP_MOVE {
		return fmt.Sprintf("move(%d)", s.City)
	}
	return fmt.Sprintf("%s(%d@%d)", s.Kind, s.Task, s.City)
}

// schema for route of a single vehicle in schedule
type Route struct {
	VehicleID    int     `json:"vehicle_id"`
	Steps        []Step  `json:"steps"`
	Tasks        []int   `json:"tasks"`
	Distance     float64 `json:"distance"`
	Cost         float64 `json:"cost"`
	Reward       float64 `json:"reward"`
	VehicleStart int64   `json:"vehicle_start"`
	VehicleEnd   int64   `json:"vehicle_end"`
}

// schema for schedule extracted from a state
type Schedule struct {
	Routes []Route `json:"routes"`
	Cost   float64 `json:"cost"`
	Reward float64 `json:"reward"`
	Stats  struct {
		Solver     string  `json:"solver"`
		Iterations int     `json:"iterations"`
		Initial    float64 `json:"initial_cost"`
	} `json:"stats"`
}

// turn ordered actions into move-by-move plans along shortest paths
func NewSchedule(s *State, topology PathTopology) Schedule {
	var sched Schedule
	for v, chain := range s.Materialize() {
		vehicle := s.vehicles[v]
		route := Route{
			VehicleID:    v,
			Steps:        []Step{},
			Tasks:        []int{},
			Distance:     s.RouteDistance(v),
			Cost:         s.RouteCost(v),
			VehicleStart: vehicle.Home,
			VehicleEnd:   vehicle.Home,
		}
		at := vehicle.Home
		for _, a := range chain {
			city := s.city(a)
			for _, c := range topology.PathTo(at, city) {
				route.Steps = append(route.Steps, Step{Kind: STEP_MOVE, City: c, Task: -1})
			}
			at = city
			if a.Kind == PICKUP {
				route.Steps = append(route.Steps, Step{Kind: STEP_PICKUP, City: city, Task: a.Task})
				route.Tasks = append(route.Tasks, a.Task)
			} else {
				route.Steps = append(route.Steps, Step{Kind: STEP_DELIVERY, City: city, Task: a.Task})
				route.Reward += s.tasks[a.Task].Reward
			}
		}
		route.VehicleEnd = at
		sched.Routes = append(sched.Routes, route)
		sched.Cost += route.Cost
		sched.Reward += route.Reward
	}
	return sched
}

func (s Schedule) Profit() float64 {
	return s.Reward - s.Cost
}

func (s Schedule) String() string {
	out := fmt.Sprintf("schedule with cost %0.2f, reward %0.2f {", s.Cost, s.Reward)
	for _, r := range s.Routes {
		out += fmt.Sprintf("vehicle %d: %d tasks, %0.1f km, ", r.VehicleID, len(r.Tasks), r.Distance)
	}
	out += "}"
	return out
}

func (s Schedule) Distances() []float64 {
	dist := make([]float64, len(s.Routes))
	for i, r := range s.Routes {
		dist[i] = r.Distance
	}
	return dist
}

func (s Schedule) MaxDistance() float64 {
	_, max := common.GetMinMax(s.Distances())
	if len(s.Routes) == 0 {
		return 0
	}
	return max
}

// interface to planners
type Solver interface {
	New() Solver
	Name() string
	Set(Topology, common.Fleet, common.TaskSet)
	SetInitialState(*State)
	Solve() (*State, error)
}

// constructive heuristic followed by local search
type SlsSolver struct {
	Heuristic     Heuristic
	P             float64
	Budget        time.Duration
	Margin        time.Duration
	Seed          int64
	Now           func() time.Time
	topology      Topology
	vehicles      common.Fleet
	tasks         common.TaskSet
	initial_state *State
	stats         SearchStats
}

func (g *SlsSolver) New() Solver {
	return &SlsSolver{
		Heuristic: g.Heuristic,
		P:         g.P,
		Budget:    g.Budget,
		Margin:    g.Margin,
		Seed:      g.Seed,
		Now:       g.Now,
	}
}

func (g *SlsSolver) Name() string {
	return "sls_" + g.Heuristic.String()
}

func (g *SlsSolver) Set(t Topology, v common.Fleet, tasks common.TaskSet) {
	g.topology = t
	g.vehicles = v
	g.tasks = tasks
	g.initial_state = nil
}

func (g *SlsSolver) SetInitialState(s *State) {
	g.initial_state = s
}

func (g *SlsSolver) Stats() SearchStats {
	return g.stats
}

func (g *SlsSolver) Solve() (*State, error) {
	start := time.Now()
	searcher := NewSearcher(g.P, ModeVehicle, g.Seed)
	if g.Now != nil {
		searcher.Now = g.Now
		start = g.Now()
	}
	if g.Margin > 0 {
		searcher.Margin = g.Margin
	}

	initial := g.initial_state
	if initial == nil {
		var err error
		initial, err = BuildInitial(g.topology, g.vehicles, g.tasks, g.Heuristic)
		if err != nil {
			return nil, err
		}
	}

	best, stats := searcher.SearchWithStats(initial, start, g.Budget)
	g.stats = stats
	return best, nil
}
