package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"sync"
)

var (
	// Registry is the dedicated Prometheus registry for the planner
	Registry = prometheus.NewRegistry()

	// SearchIterations counts local search iterations by objective mode
	SearchIterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pdp_search_iterations_total", Help: "Local search iterations."},
		[]string{"mode"},
	)
	// SearchCandidates counts neighbour states generated
	SearchCandidates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pdp_search_candidates_total", Help: "Neighbour states generated."},
		[]string{"mode"},
	)
	// SearchImprovements counts strict improvements of the best-known state
	SearchImprovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pdp_search_improvements_total", Help: "Improvements of the best-known state."},
		[]string{"mode"},
	)
	// BestObjective is the objective of the last search's best state
	BestObjective = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "pdp_search_best_objective", Help: "Objective of the last best-known state."},
		[]string{"mode"},
	)

	// Bids records bids placed by agent
	Bids = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "pdp_auction_bid", Help: "Bids placed.", Buckets: prometheus.ExponentialBuckets(10, 2, 12)},
		[]string{"agent"},
	)
	// AuctionsWon counts tasks won by agent
	AuctionsWon = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pdp_auction_won_total", Help: "Tasks won."},
		[]string{"agent"},
	)
)

// RegisterDefault registers collectors to the planner registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SearchIterations)
		Registry.MustRegister(SearchCandidates)
		Registry.MustRegister(SearchImprovements)
		Registry.MustRegister(BestObjective)
		Registry.MustRegister(Bids)
		Registry.MustRegister(AuctionsWon)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
