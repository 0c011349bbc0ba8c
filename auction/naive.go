package auction

import (
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
	"github.com/mobius-scheduler/pdp/metrics"
	"github.com/mobius-scheduler/pdp/vrp"
	"math"
)

// bidder pricing tasks by the marginal cost of the naive plan
type NaiveBidder struct {
	Id       int
	Topology *common.Topology
	Vehicles common.Fleet
	Markup   float64

	won  common.TaskSet
	cost float64
	next float64
}

func (n *NaiveBidder) ID() int { return n.Id }

func (n *NaiveBidder) plan(tasks common.TaskSet) (*vrp.State, error) {
	solver := vrp.NaiveSolver{}
	solver.Set(n.Topology, n.Vehicles, tasks.Renumber())
	return solver.Solve()
}

func (n *NaiveBidder) AskPrice(task common.Task) (float64, error) {
	s, err := n.plan(append(n.won[:len(n.won):len(n.won)], task))
	if err != nil {
		return 0, fmt.Errorf("naive bidder %d refuses %v: %w", n.Id, task, err)
	}
	n.next = vrp.Objective(s, vrp.ModeVehicle)
	bid := math.Max(0, n.next-n.cost) * (1 + n.Markup)
	metrics.Bids.WithLabelValues(fmt.Sprint(n.Id)).Observe(bid)
	return bid, nil
}

func (n *NaiveBidder) AuctionResult(task common.Task, winner int, bids []float64) {
	if winner != n.Id {
		return
	}
	n.won = append(n.won, task)
	n.cost = n.next
	metrics.AuctionsWon.WithLabelValues(fmt.Sprint(n.Id)).Inc()
}

func (n *NaiveBidder) Plan() (vrp.Schedule, error) {
	s, err := n.plan(n.won)
	if err != nil {
		return vrp.Schedule{}, err
	}
	sched := vrp.NewSchedule(s, n.Topology)
	for i := range sched.Routes {
		route := &sched.Routes[i]
		for j, t := range route.Tasks {
			route.Tasks[j] = n.won[t].ID
		}
		for j, step := range route.Steps {
			if step.Kind != vrp.STEP_MOVE {
				route.Steps[j].Task = n.won[step.Task].ID
			}
		}
	}
	sched.Stats.Solver = "naive"
	return sched, nil
}
