package auction

import (
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// observations needed before predicting
const MIN_OBSERVATIONS = 3

// linear model of opponent bids: bid = c + k * estimated marginal cost
type opponent_model struct {
	marginals []float64
	bids      []float64
}

func (m *opponent_model) observe(marginal, bid float64) {
	m.marginals = append(m.marginals, marginal)
	m.bids = append(m.bids, bid)
}

// least-squares fit of (c, k)
func (m *opponent_model) fit() (float64, float64, bool) {
	n := len(m.bids)
	if n < MIN_OBSERVATIONS || stat.Variance(m.marginals, nil) == 0 {
		return 0, 0, false
	}

	// A = [1 marginal], b = bid
	A := mat.NewDense(n, 2, nil)
	b := mat.NewVecDense(n, nil)
	for i := range m.bids {
		A.SetRow(i, []float64{1, m.marginals[i]})
		b.SetVec(i, m.bids[i])
	}

	x := mat.NewVecDense(2, nil)
	if err := x.SolveVec(A, b); err != nil {
		log.Warnf("[auction] could not fit opponent model: %v", err)
		return 0, 0, false
	}
	return x.AtVec(0), x.AtVec(1), true
}

// predicted opponent bid for an estimated opponent marginal cost
func (m *opponent_model) predict(marginal float64) (float64, bool) {
	c, k, ok := m.fit()
	if !ok {
		return 0, false
	}
	bid := c + k*marginal
	if bid <= 0 {
		return 0, false
	}
	return bid, true
}
