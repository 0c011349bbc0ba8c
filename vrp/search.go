package vrp

import (
	"github.com/mobius-scheduler/pdp/metrics"
	log "github.com/sirupsen/logrus"
	"math"
	"math/rand"
	"time"
)

// time kept in reserve before the deadline; one iteration must fit in it
const DEFAULT_MARGIN = 300 * time.Millisecond

// anytime stochastic local search
type Searcher struct {
	// probability of picking a best candidate instead of a random one
	P      float64
	Mode   Mode
	Margin time.Duration
	Rand   *rand.Rand
	Now    func() time.Time
}

func NewSearcher(p float64, mode Mode, seed int64) *Searcher {
	return &Searcher{
		P:      p,
		Mode:   mode,
		Margin: DEFAULT_MARGIN,
		Rand:   rand.New(rand.NewSource(seed)),
		Now:    time.Now,
	}
}

// search statistics of a single run
type SearchStats struct {
	Iterations   int
	Candidates   int
	Improvements int
	InitialCost  float64
	BestCost     float64
}

// search from s until deadline (minus margin); returns best state seen
func (x *Searcher) SearchUntil(s *State, deadline time.Time) *State {
	best, _ := x.run(s, deadline.Add(-x.Margin))
	return best
}

// search from s for budget, counted from start
func (x *Searcher) Search(s *State, start time.Time, budget time.Duration) *State {
	best, _ := x.run(s, start.Add(budget-x.Margin))
	return best
}

// like Search, also returning statistics
func (x *Searcher) SearchWithStats(s *State, start time.Time, budget time.Duration) (*State, SearchStats) {
	return x.run(s, start.Add(budget-x.Margin))
}

func (x *Searcher) run(s *State, stop time.Time) (*State, SearchStats) {
	mode := x.Mode.String()
	best := s
	best_cost := Objective(s, x.Mode)
	stats := SearchStats{InitialCost: best_cost, BestCost: best_cost}

	current := s
	for x.Now().Before(stop) {
		candidates := Neighbors(current)
		stats.Iterations++
		stats.Candidates += len(candidates)
		if len(candidates) == 0 {
			break
		}

		var cost float64
		current, cost = x.choose(candidates)
		if cost < best_cost {
			best = current.Clone()
			best_cost = cost
			stats.Improvements++
			log.Debugf("[vrp] iteration %d (%s): best cost %0.2f", stats.Iterations, mode, cost)
		}
	}
	stats.BestCost = best_cost

	metrics.SearchIterations.WithLabelValues(mode).Add(float64(stats.Iterations))
	metrics.SearchCandidates.WithLabelValues(mode).Add(float64(stats.Candidates))
	metrics.SearchImprovements.WithLabelValues(mode).Add(float64(stats.Improvements))
	metrics.BestObjective.WithLabelValues(mode).Set(best_cost)
	log.Debugf(
		"[vrp] search (%s): %d iterations, %d candidates, cost %0.2f -> %0.2f",
		mode,
		stats.Iterations,
		stats.Candidates,
		stats.InitialCost,
		stats.BestCost,
	)
	return best, stats
}

// with probability P, a uniformly chosen minimum-cost candidate; otherwise
// any candidate, uniformly
func (x *Searcher) choose(candidates []*State) (*State, float64) {
	if x.Rand.Float64() < x.P {
		best := math.Inf(1)
		var ties []int
		for i, c := range candidates {
			cost := Objective(c, x.Mode)
			if cost < best {
				best = cost
				ties = ties[:0]
			}
			if cost == best {
				ties = append(ties, i)
			}
		}
		return candidates[ties[x.Rand.Intn(len(ties))]], best
	}
	c := candidates[x.Rand.Intn(len(candidates))]
	return c, Objective(c, x.Mode)
}
