package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefault(t *testing.T) {
	RegisterDefault()
	RegisterDefault()

	SearchIterations.WithLabelValues("vehicle").Add(3)
	AuctionsWon.WithLabelValues("0").Inc()

	families, err := Registry.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.GreaterOrEqual(t, values["pdp_search_iterations_total"], 3.0)
	assert.GreaterOrEqual(t, values["pdp_auction_won_total"], 1.0)
}
