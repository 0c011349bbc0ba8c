package vrp

import log "github.com/sirupsen/logrus"

// per-vehicle accumulator while constructing a state
type build_state struct {
	vehicle  int
	time     int
	carried  []int
	load     int
	previous Action
}

// build states resuming from the current end of every chain
func new_build_states(s *State) []*build_state {
	bs := make([]*build_state, len(s.vehicles))
	for v := range s.vehicles {
		chain := s.Chain(v)
		b := &build_state{vehicle: v, time: len(chain), previous: None}
		if len(chain) > 0 {
			b.previous = chain[len(chain)-1]
		}
		bs[v] = b
	}
	return bs
}

// link action after the vehicle's previous action
func (s *State) append_action(a Action, b *build_state) {
	if b.previous.IsNone() {
		s.first[b.vehicle] = a
	} else {
		s.set_next(b.previous, a)
	}
	s.set_next(a, None)
	if a.Kind == PICKUP {
		s.pickup_rank[a.Task] = b.time
	} else {
		s.delivery_rank[a.Task] = b.time
	}
	b.time++
	b.previous = a
}

// append pickup of task t to vehicle being built
func (s *State) assign_pickup(t int, b *build_state) {
	s.check_task(t)
	s.check_vehicle(b.vehicle)
	if s.vehicle[t] != -1 {
		log.Panicf("[vrp] task %d already assigned to vehicle %d", t, s.vehicle[t])
	}
	s.vehicle[t] = b.vehicle
	s.append_action(Pickup(t), b)
	b.carried = append(b.carried, t)
	b.load += s.tasks[t].Weight
}

// append deliveries of all carried tasks, in pickup order
func (s *State) flush_deliveries(b *build_state) {
	for _, t := range b.carried {
		s.append_action(Delivery(t), b)
	}
	b.carried = nil
	b.load = 0
}

// whether task t fits on top of the current load
func (s *State) fits(t int, b *build_state) bool {
	return b.load+s.tasks[t].Weight <= s.vehicles[b.vehicle].Capacity
}
