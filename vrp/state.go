package vrp

import (
	"errors"
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
	log "github.com/sirupsen/logrus"
)

// road network seen by the planner
type Topology interface {
	Distance(a, b int64) float64
	Neighbors(c int64) []int64
}

// multi-vehicle solution, encoded as successor chains over dense task and
// vehicle IDs. Every vehicle's chain starts at first[v] and follows
// after_pickup / after_delivery until None.
type State struct {
	topology Topology
	vehicles common.Fleet
	tasks    common.TaskSet

	vehicle        []int
	pickup_rank    []int
	delivery_rank  []int
	first          []Action
	after_pickup   []Action
	after_delivery []Action
}

// create state with no task assigned
func NewState(topology Topology, vehicles common.Fleet, tasks common.TaskSet) *State {
	s := &State{
		topology:       topology,
		vehicles:       vehicles,
		tasks:          tasks,
		vehicle:        make([]int, len(tasks)),
		pickup_rank:    make([]int, len(tasks)),
		delivery_rank:  make([]int, len(tasks)),
		first:          make([]Action, len(vehicles)),
		after_pickup:   make([]Action, len(tasks)),
		after_delivery: make([]Action, len(tasks)),
	}
	for t := range tasks {
		s.vehicle[t] = -1
		s.pickup_rank[t] = -1
		s.delivery_rank[t] = -1
		s.after_pickup[t] = None
		s.after_delivery[t] = None
	}
	for v := range vehicles {
		s.first[v] = None
	}
	return s
}

// copy index arrays; tasks, vehicles and topology are shared
func (s *State) Clone() *State {
	return &State{
		topology:       s.topology,
		vehicles:       s.vehicles,
		tasks:          s.tasks,
		vehicle:        append([]int(nil), s.vehicle...),
		pickup_rank:    append([]int(nil), s.pickup_rank...),
		delivery_rank:  append([]int(nil), s.delivery_rank...),
		first:          append([]Action(nil), s.first...),
		after_pickup:   append([]Action(nil), s.after_pickup...),
		after_delivery: append([]Action(nil), s.after_delivery...),
	}
}

// copy state with one more (unassigned) task
func (s *State) with_task(t common.Task) *State {
	x := s.Clone()
	x.tasks = s.tasks.With(t)
	x.vehicle = append(x.vehicle, -1)
	x.pickup_rank = append(x.pickup_rank, -1)
	x.delivery_rank = append(x.delivery_rank, -1)
	x.after_pickup = append(x.after_pickup, None)
	x.after_delivery = append(x.after_delivery, None)
	return x
}

func (s *State) Topology() Topology      { return s.topology }
func (s *State) Vehicles() common.Fleet  { return s.vehicles }
func (s *State) Tasks() common.TaskSet   { return s.tasks }
func (s *State) NumTasks() int           { return len(s.tasks) }
func (s *State) NumVehicles() int        { return len(s.vehicles) }
func (s *State) Task(t int) common.Task  { s.check_task(t); return s.tasks[t] }
func (s *State) First(v int) Action      { s.check_vehicle(v); return s.first[v] }
func (s *State) VehicleOf(t int) int     { s.check_task(t); return s.vehicle[t] }
func (s *State) PickupRank(t int) int    { s.check_task(t); return s.pickup_rank[t] }
func (s *State) DeliveryRank(t int) int  { s.check_task(t); return s.delivery_rank[t] }
func (s *State) Assigned(t int) bool     { return s.VehicleOf(t) >= 0 }

func (s *State) check_task(t int) {
	if t < 0 || t >= len(s.tasks) {
		log.Panicf("[vrp] task %d out of range [0, %d)", t, len(s.tasks))
	}
}

func (s *State) check_vehicle(v int) {
	if v < 0 || v >= len(s.vehicles) {
		log.Panicf("[vrp] vehicle %d out of range [0, %d)", v, len(s.vehicles))
	}
}

// action following a in its vehicle's chain
func (s *State) Next(a Action) Action {
	s.check_task(a.Task)
	if a.Kind == PICKUP {
		return s.after_pickup[a.Task]
	}
	return s.after_delivery[a.Task]
}

func (s *State) set_next(a, next Action) {
	if a.Kind == PICKUP {
		s.after_pickup[a.Task] = next
	} else {
		s.after_delivery[a.Task] = next
	}
}

// city where action takes place
func (s *State) city(a Action) int64 {
	if a.Kind == PICKUP {
		return s.tasks[a.Task].Pickup
	}
	return s.tasks[a.Task].Delivery
}

// walk vehicle chain into an ordered list of actions
func (s *State) Chain(v int) []Action {
	s.check_vehicle(v)
	var chain []Action
	limit := 2 * len(s.tasks)
	for a := s.first[v]; !a.IsNone(); a = s.Next(a) {
		if len(chain) == limit {
			log.Panicf("[vrp] chain of vehicle %d does not terminate", v)
		}
		chain = append(chain, a)
	}
	return chain
}

// number of tasks carried by vehicle
func (s *State) Load(v int) int {
	return len(s.Chain(v)) / 2
}

// per-vehicle ordered actions
func (s *State) Materialize() [][]Action {
	out := make([][]Action, len(s.vehicles))
	for v := range s.vehicles {
		out[v] = s.Chain(v)
	}
	return out
}

// rewrite links, ranks and ownership of vehicle v from an explicit chain
func (s *State) set_chain(v int, chain []Action) {
	s.check_vehicle(v)
	if len(chain) == 0 {
		s.first[v] = None
		return
	}
	s.first[v] = chain[0]
	for i, a := range chain {
		s.check_task(a.Task)
		next := None
		if i+1 < len(chain) {
			next = chain[i+1]
		}
		s.set_next(a, next)
		s.vehicle[a.Task] = v
		if a.Kind == PICKUP {
			s.pickup_rank[a.Task] = i
		} else {
			s.delivery_rank[a.Task] = i
		}
	}
}

var ErrCorrupt = errors.New("route state corrupt")

// check all chain invariants, including the load constraint
func (s *State) Validate() error {
	seen := make([]int, len(s.tasks))
	for v := range s.vehicles {
		chain := s.Chain(v)
		for i, a := range chain {
			if s.vehicle[a.Task] != v {
				return fmt.Errorf("%w: %v in chain of vehicle %d, owned by %d", ErrCorrupt, a, v, s.vehicle[a.Task])
			}
			switch a.Kind {
			case PICKUP:
				if seen[a.Task] != 0 {
					return fmt.Errorf("%w: %v out of order", ErrCorrupt, a)
				}
				if s.pickup_rank[a.Task] != i {
					return fmt.Errorf("%w: %v at %d has rank %d", ErrCorrupt, a, i, s.pickup_rank[a.Task])
				}
			case DELIVERY:
				if seen[a.Task] != 1 {
					return fmt.Errorf("%w: %v out of order", ErrCorrupt, a)
				}
				if s.delivery_rank[a.Task] != i {
					return fmt.Errorf("%w: %v at %d has rank %d", ErrCorrupt, a, i, s.delivery_rank[a.Task])
				}
			}
			seen[a.Task]++
		}
		if !LoadSatisfied(s, v) {
			return fmt.Errorf("%w: vehicle %d over capacity", ErrCorrupt, v)
		}
	}
	for t, n := range seen {
		if n != 2 && (n != 0 || s.vehicle[t] != -1) {
			return fmt.Errorf("%w: task %d appears %d times", ErrCorrupt, t, n)
		}
	}
	return nil
}
