package vrp

import (
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
)

// naive planner: a single vehicle carries every task, one at a time, in ID
// order. Uses the first vehicle able to carry the heaviest task.
type NaiveSolver struct {
	topology Topology
	vehicles common.Fleet
	tasks    common.TaskSet
}

func (n *NaiveSolver) New() Solver { return &NaiveSolver{} }

func (n *NaiveSolver) Name() string { return "naive" }

func (n *NaiveSolver) SetInitialState(s *State) {}

func (n *NaiveSolver) Set(t Topology, v common.Fleet, tasks common.TaskSet) {
	n.topology = t
	n.vehicles = v
	n.tasks = tasks
}

func (n *NaiveSolver) Solve() (*State, error) {
	s := NewState(n.topology, n.vehicles, n.tasks)
	if len(n.tasks) == 0 {
		return s, nil
	}

	heaviest := n.tasks.MaxWeight()
	for _, v := range n.vehicles {
		if v.Capacity < heaviest {
			continue
		}
		b := &build_state{vehicle: v.ID, previous: None}
		for t := range n.tasks {
			s.assign_pickup(t, b)
			s.flush_deliveries(b)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: no vehicle carries weight %d", ErrInfeasible, heaviest)
}
