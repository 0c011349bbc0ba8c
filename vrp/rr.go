package vrp

import "github.com/mobius-scheduler/pdp/common"

// round-robin planner: tasks dealt to vehicles in turn, each carried alone
type RoundRobinSolver struct {
	topology Topology
	vehicles common.Fleet
	tasks    common.TaskSet
}

func (r *RoundRobinSolver) New() Solver { return &RoundRobinSolver{} }

func (r *RoundRobinSolver) Name() string { return "round_robin" }

func (r *RoundRobinSolver) SetInitialState(s *State) {}

func (r *RoundRobinSolver) Set(t Topology, v common.Fleet, tasks common.TaskSet) {
	r.topology = t
	r.vehicles = v
	r.tasks = tasks
}

func (r *RoundRobinSolver) Solve() (*State, error) {
	if err := check_feasible(r.vehicles, r.tasks); err != nil {
		return nil, err
	}

	s := NewState(r.topology, r.vehicles, r.tasks)
	bs := new_build_states(s)
	v := 0
	for t := range r.tasks {
		// skip vehicles too small to carry the task
		for !s.fits(t, bs[v]) {
			v = (v + 1) % len(r.vehicles)
		}
		s.assign_pickup(t, bs[v])
		s.flush_deliveries(bs[v])
		v = (v + 1) % len(r.vehicles)
	}
	return s, nil
}
