package auction

import (
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
	"github.com/mobius-scheduler/pdp/metrics"
	"github.com/mobius-scheduler/pdp/vrp"
	log "github.com/sirupsen/logrus"
	"math"
	"math/rand"
	"time"
)

// participant in a sequential task auction
type Bidder interface {
	ID() int
	// price for carrying task; error when the task cannot be carried
	AskPrice(task common.Task) (float64, error)
	// bids are indexed by bidder ID; refused bids are +Inf
	AuctionResult(task common.Task, winner int, bids []float64)
	Plan() (vrp.Schedule, error)
}

type Config struct {
	BidBudget  time.Duration `json:"bid_budget"`
	PlanBudget time.Duration `json:"plan_budget"`
	Margin     time.Duration `json:"margin"`
	P          float64       `json:"p"`
	Heuristic  vrp.Heuristic `json:"heuristic"`
	Seed       int64         `json:"seed"`
	Markup     float64       `json:"markup"`
	MinBid     float64       `json:"min_bid"`
	// fraction below the predicted opponent bid we aim for
	Undercut float64 `json:"undercut"`
}

// bidding agent pricing tasks by marginal cost under local search, for its
// own fleet and for a hypothesised opponent fleet
type Agent struct {
	Id       int
	Topology *common.Topology
	Vehicles common.Fleet
	// hypothesised opponent fleet; defaults to own fleet at random homes
	Opponent common.Fleet
	Cfg      Config
	Now      func() time.Time

	rng        *rand.Rand
	own        *vrp.Searcher
	opp        *vrp.Searcher
	state      *vrp.State
	cost       float64
	opp_state  *vrp.State
	opp_cost   float64
	won        common.TaskSet
	model      opponent_model
	pending    *vrp.State
	opp_next   *vrp.State
	opp_margin float64
}

// init agent state; must be called before bidding
func (a *Agent) Init() {
	if a.Now == nil {
		a.Now = time.Now
	}
	a.rng = rand.New(rand.NewSource(a.Cfg.Seed))
	a.own = vrp.NewSearcher(a.Cfg.P, vrp.ModeVehicle, a.rng.Int63())
	a.opp = vrp.NewSearcher(a.Cfg.P, vrp.ModeOpponent, a.rng.Int63())
	for _, s := range []*vrp.Searcher{a.own, a.opp} {
		s.Now = a.Now
		if a.Cfg.Margin > 0 {
			s.Margin = a.Cfg.Margin
		}
	}

	if a.Opponent == nil {
		a.Opponent = a.guess_opponent()
	}

	a.state = vrp.NewState(a.Topology, a.Vehicles, nil)
	a.opp_state = vrp.NewState(a.Topology, a.Opponent, nil)
	a.cost, a.opp_cost = 0, 0
	a.won = nil
	a.model = opponent_model{}
	a.pending, a.opp_next, a.opp_margin = nil, nil, math.NaN()
	log.Debugf("[auction] agent %d: %d vehicles, opponent %d vehicles", a.Id, len(a.Vehicles), len(a.Opponent))
}

// same vehicles as own fleet, homes drawn uniformly from the topology;
// own homes when the topology has no cities
func (a *Agent) guess_opponent() common.Fleet {
	cities := a.Topology.Cities()
	fleet := make(common.Fleet, len(a.Vehicles))
	if len(cities) == 0 {
		log.Warnf("[auction] agent %d: empty topology, opponent fleet copies own", a.Id)
		copy(fleet, a.Vehicles)
		return fleet
	}
	for i, v := range a.Vehicles {
		v.Home = cities[a.rng.Intn(len(cities))].ID
		v.Name = fmt.Sprintf("opponent-%d", i)
		fleet[i] = v
	}
	return fleet
}

func (a *Agent) ID() int { return a.Id }

// tasks won so far
func (a *Agent) Won() common.TaskSet { return a.won }

// current cost of carrying every task won
func (a *Agent) Cost() float64 { return a.cost }

func (a *Agent) AskPrice(task common.Task) (float64, error) {
	start := a.Now()
	half := a.Cfg.BidBudget / 2
	a.pending = nil
	a.opp_next = nil
	a.opp_margin = math.NaN()

	own, err := vrp.InsertRandom(a.state, task, a.rng)
	if err != nil {
		return 0, fmt.Errorf("agent %d refuses %v: %w", a.Id, task, err)
	}
	own = a.own.Search(own, start, half)
	a.pending = own
	marginal := math.Max(0, vrp.Objective(own, vrp.ModeVehicle)-a.cost)

	// opponent marginal cost, in the remaining half
	if opp, err := vrp.InsertRandom(a.opp_state, task, a.rng); err == nil {
		opp = a.opp.Search(opp, start, a.Cfg.BidBudget)
		a.opp_next = opp
		a.opp_margin = math.Max(0, vrp.Objective(opp, vrp.ModeOpponent)-a.opp_cost)
	}

	bid := marginal * (1 + a.Cfg.Markup)
	if !math.IsNaN(a.opp_margin) {
		if predicted, ok := a.model.predict(a.opp_margin); ok {
			target := predicted * (1 - a.Cfg.Undercut)
			if target > bid {
				bid = target
			}
		}
	}
	bid = math.Max(bid, a.Cfg.MinBid)

	metrics.Bids.WithLabelValues(fmt.Sprint(a.Id)).Observe(bid)
	log.Debugf(
		"[auction] agent %d: %v marginal %0.2f, opponent marginal %0.2f, bid %0.2f",
		a.Id,
		task,
		marginal,
		a.opp_margin,
		bid,
	)
	return bid, nil
}

func (a *Agent) AuctionResult(task common.Task, winner int, bids []float64) {
	if winner == a.Id {
		if a.pending == nil {
			log.Panicf("[auction] agent %d won %v without bidding", a.Id, task)
		}
		a.state = a.pending
		a.cost = vrp.Objective(a.state, vrp.ModeVehicle)
		a.won = append(a.won, task)
		metrics.AuctionsWon.WithLabelValues(fmt.Sprint(a.Id)).Inc()
	} else if winner >= 0 {
		// assume the winner is the opponent we model
		if a.opp_next != nil {
			a.opp_state = a.opp_next
			a.opp_cost = vrp.Objective(a.opp_state, vrp.ModeOpponent)
		}
		if winner < len(bids) && !math.IsNaN(a.opp_margin) && !math.IsInf(bids[winner], 1) {
			a.model.observe(a.opp_margin, bids[winner])
		}
	}
	a.pending = nil
	a.opp_next = nil
	a.opp_margin = math.NaN()
}

// replan tasks won with the full plan budget; task IDs in the schedule are
// those announced by the auction
func (a *Agent) Plan() (vrp.Schedule, error) {
	searcher := vrp.NewSearcher(a.Cfg.P, vrp.ModeVehicle, a.rng.Int63())
	searcher.Now = a.Now
	if a.Cfg.Margin > 0 {
		searcher.Margin = a.Cfg.Margin
	}

	// restart from a constructive heuristic when it beats the bidding state
	initial := a.state
	if s, err := vrp.BuildInitial(a.Topology, a.Vehicles, a.state.Tasks(), a.Cfg.Heuristic); err == nil {
		if vrp.Objective(s, vrp.ModeVehicle) < a.cost {
			initial = s
		}
	}

	best, stats := searcher.SearchWithStats(initial, a.Now(), a.Cfg.PlanBudget)
	if err := best.Validate(); err != nil {
		return vrp.Schedule{}, fmt.Errorf("agent %d: %w", a.Id, err)
	}

	sched := vrp.NewSchedule(best, a.Topology)
	for i := range sched.Routes {
		route := &sched.Routes[i]
		for j, t := range route.Tasks {
			route.Tasks[j] = a.won[t].ID
		}
		for j, s := range route.Steps {
			if s.Kind != vrp.STEP_MOVE {
				route.Steps[j].Task = a.won[s.Task].ID
			}
		}
	}
	sched.Stats.Solver = "agent"
	sched.Stats.Iterations = stats.Iterations
	sched.Stats.Initial = stats.InitialCost
	log.Printf("[auction] agent %d: %d tasks, %v", a.Id, len(a.won), sched)
	return sched, nil
}
