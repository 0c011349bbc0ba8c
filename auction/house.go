package auction

import (
	"encoding/csv"
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
	"github.com/mobius-scheduler/pdp/vrp"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"math"
)

// outcome of a single auction round
type Result struct {
	Task   common.Task `json:"task"`
	Winner int         `json:"winner"`
	Bids   []float64   `json:"-"`
}

// final plan and revenue of a bidder
type Outcome struct {
	Bidder   int          `json:"bidder"`
	Schedule vrp.Schedule `json:"schedule"`
	Revenue  float64      `json:"revenue"`
	Profit   float64      `json:"profit"`
}

// sequential first-price reverse auction: lowest bid wins each task
type House struct {
	Bidders []Bidder
	Tasks   common.TaskSet
	Dir     string
	Results []Result
	writer  *csv.Writer
}

func (h *House) get_csv_row(round int, r Result) []string {
	row := make([]string, 3+len(h.Bidders))
	row[0] = fmt.Sprint(round)
	row[1] = fmt.Sprint(r.Task.ID)
	row[2] = fmt.Sprint(r.Winner)
	for i, b := range r.Bids {
		row[3+i] = fmt.Sprintf("%0.2f", b)
	}
	return row
}

// auction one task; winner is -1 if every bidder refused
func (h *House) round(task common.Task) Result {
	bids := make([]float64, len(h.Bidders))
	winner := -1
	for i, b := range h.Bidders {
		if b.ID() != i {
			log.Panicf("[auction] bidder at index %d has id %d", i, b.ID())
		}
		bid, err := b.AskPrice(task)
		if err != nil {
			log.Debugf("[auction] %v", err)
			bid = math.Inf(1)
		}
		bids[i] = bid
		if !math.IsInf(bid, 1) && (winner < 0 || bid < bids[winner]) {
			winner = i
		}
	}

	for _, b := range h.Bidders {
		b.AuctionResult(task, winner, bids)
	}
	return Result{Task: task, Winner: winner, Bids: bids}
}

// run auction over all tasks, then collect final plans
func (h *House) Run() ([]Outcome, error) {
	h.writer = nil
	if h.Dir != "" {
		writer, file, err := common.CreateCSVWriter(h.Dir + "/auction.csv")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		h.writer = writer
		header := []string{"round", "task", "winner"}
		for i := range h.Bidders {
			header = append(header, fmt.Sprintf("bid%d", i))
		}
		h.writer.Write(header)
	}

	revenue := make([]float64, len(h.Bidders))
	var winning []float64
	h.Results = nil
	for round, task := range h.Tasks {
		r := h.round(task)
		h.Results = append(h.Results, r)
		if h.writer != nil {
			h.writer.Write(h.get_csv_row(round, r))
		}

		if r.Winner < 0 {
			log.Warnf("[auction] round %d: %v refused by every bidder", round, task)
			continue
		}
		revenue[r.Winner] += r.Bids[r.Winner]
		winning = append(winning, r.Bids[r.Winner])
		min, max := common.GetMinMax(r.Bids)
		log.Printf(
			"[auction] round %d, %v won by %d for %0.2f (bids %0.2f-%0.2f)",
			round,
			task,
			r.Winner,
			r.Bids[r.Winner],
			min,
			max,
		)
	}
	if h.writer != nil {
		h.writer.Flush()
		if err := h.writer.Error(); err != nil {
			return nil, fmt.Errorf("writing auction log: %w", err)
		}
	}
	if len(winning) > 0 {
		log.Printf("[auction] %d tasks sold, mean price %0.2f", len(winning), stat.Mean(winning, nil))
	}

	outcomes := make([]Outcome, len(h.Bidders))
	for i, b := range h.Bidders {
		sched, err := b.Plan()
		if err != nil {
			return nil, fmt.Errorf("plan of bidder %d: %w", i, err)
		}
		outcomes[i] = Outcome{
			Bidder:   i,
			Schedule: sched,
			Revenue:  revenue[i],
			Profit:   revenue[i] - sched.Cost,
		}
		log.Printf(
			"[auction] bidder %d: revenue %0.2f, cost %0.2f, profit %0.2f",
			i,
			revenue[i],
			sched.Cost,
			outcomes[i].Profit,
		)
	}
	return outcomes, nil
}
