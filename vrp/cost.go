package vrp

import "fmt"

// objective mode
type Mode int

const (
	// real per-vehicle travel cost of own fleet
	ModeVehicle Mode = iota
	// same cost, evaluated on a hypothesised opponent fleet while bidding
	ModeOpponent
)

func (m Mode) String() string {
	switch m {
	case ModeVehicle:
		return "vehicle"
	case ModeOpponent:
		return "opponent"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// distance driven by vehicle v along its chain, starting at home
func (s *State) RouteDistance(v int) float64 {
	a := s.First(v)
	if a.IsNone() {
		return 0
	}
	dist := s.topology.Distance(s.vehicles[v].Home, s.city(a))
	for next := s.Next(a); !next.IsNone(); a, next = next, s.Next(next) {
		dist += s.topology.Distance(s.city(a), s.city(next))
	}
	return dist
}

// travel cost of vehicle v
func (s *State) RouteCost(v int) float64 {
	return s.RouteDistance(v) * s.vehicles[v].CostPerKm
}

// total distance-weighted travel cost over all vehicles
func Objective(s *State, mode Mode) float64 {
	var total float64
	for v := range s.vehicles {
		total += s.RouteCost(v)
	}
	return total
}

// walk vehicle chain, checking running load against capacity
func LoadSatisfied(s *State, v int) bool {
	first := s.First(v)
	capacity := s.vehicles[v].Capacity
	load := 0
	for a := first; !a.IsNone(); a = s.Next(a) {
		if a.Kind == PICKUP {
			load += s.tasks[a.Task].Weight
			if load > capacity {
				return false
			}
		} else {
			load -= s.tasks[a.Task].Weight
		}
	}
	return true
}
