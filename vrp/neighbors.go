package vrp

// all valid one-move neighbours of s: re-assign each task to every other
// vehicle, and move its pickup/delivery to every other admissible rank.
// Moves that break the load constraint are dropped.
func Neighbors(s *State) []*State {
	chains := s.Materialize()
	var out []*State
	for t := range s.tasks {
		a := s.vehicle[t]
		if a < 0 {
			continue
		}

		for b := range s.vehicles {
			if x := change_vehicle(s, chains, t, b); x != nil {
				out = append(out, x)
			}
		}

		p, d := s.pickup_rank[t], s.delivery_rank[t]
		n := len(chains[a])
		for r := 0; r < n && r < d; r++ {
			if r == p {
				continue
			}
			if x := change_pickup(s, chains[a], t, r); x != nil {
				out = append(out, x)
			}
		}
		for r := p + 1; r < n; r++ {
			if r == d {
				continue
			}
			if x := change_delivery(s, chains[a], t, r); x != nil {
				out = append(out, x)
			}
		}
	}
	return out
}

// move task t to the end of vehicle b's chain
func ChangeVehicle(s *State, t, b int) *State {
	s.check_task(t)
	s.check_vehicle(b)
	if s.vehicle[t] < 0 {
		return nil
	}
	return change_vehicle(s, s.Materialize(), t, b)
}

// move pickup of task t to rank r (r < delivery rank)
func ChangePickup(s *State, t, r int) *State {
	v := s.VehicleOf(t)
	if v < 0 || r < 0 || r == s.pickup_rank[t] || r >= s.delivery_rank[t] {
		return nil
	}
	return change_pickup(s, s.Chain(v), t, r)
}

// move delivery of task t to rank r (pickup rank < r < chain length)
func ChangeDelivery(s *State, t, r int) *State {
	v := s.VehicleOf(t)
	if v < 0 || r <= s.pickup_rank[t] || r == s.delivery_rank[t] {
		return nil
	}
	chain := s.Chain(v)
	if r >= len(chain) {
		return nil
	}
	return change_delivery(s, chain, t, r)
}

func change_vehicle(s *State, chains [][]Action, t, b int) *State {
	a := s.vehicle[t]
	if a == b {
		return nil
	}

	src := make([]Action, 0, len(chains[a])-2)
	for _, x := range chains[a] {
		if x.Task != t {
			src = append(src, x)
		}
	}
	dst := make([]Action, 0, len(chains[b])+2)
	dst = append(dst, chains[b]...)
	dst = append(dst, Pickup(t), Delivery(t))

	x := s.Clone()
	x.set_chain(a, src)
	x.set_chain(b, dst)
	if !LoadSatisfied(x, a) || !LoadSatisfied(x, b) {
		return nil
	}
	return x
}

func change_pickup(s *State, chain []Action, t, r int) *State {
	x := s.Clone()
	v := s.vehicle[t]
	x.set_chain(v, move_action(chain, s.pickup_rank[t], r))
	if !LoadSatisfied(x, v) {
		return nil
	}
	return x
}

func change_delivery(s *State, chain []Action, t, r int) *State {
	x := s.Clone()
	v := s.vehicle[t]
	x.set_chain(v, move_action(chain, s.delivery_rank[t], r))
	if !LoadSatisfied(x, v) {
		return nil
	}
	return x
}

// copy chain with the action at index from re-inserted at index to
func move_action(chain []Action, from, to int) []Action {
	a := chain[from]
	out := make([]Action, 0, len(chain))
	out = append(out, chain[:from]...)
	out = append(out, chain[from+1:]...)
	out = append(out, None)
	copy(out[to+1:], out[to:])
	out[to] = a
	return out
}
