package common

import "fmt"

type Vehicle struct {
	ID        int     `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Home      int64   `json:"home" yaml:"home"`
	Capacity  int     `json:"capacity" yaml:"capacity"`
	CostPerKm float64 `json:"cost_per_km" yaml:"cost_per_km"`
}

type Fleet []Vehicle

// check that vehicle IDs are dense and capacities non-negative
func (f Fleet) Validate() error {
	for i, v := range f {
		if v.ID != i {
			return fmt.Errorf("vehicle at index %d has id %d", i, v.ID)
		}
		if v.Capacity < 0 {
			return fmt.Errorf("vehicle %d has negative capacity %d", v.ID, v.Capacity)
		}
	}
	return nil
}

// get largest capacity in fleet
func (f Fleet) MaxCapacity() int {
	max := -1
	for _, v := range f {
		if v.Capacity > max {
			max = v.Capacity
		}
	}
	return max
}
