package vrp

import (
	"container/heap"
	"errors"
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
	log "github.com/sirupsen/logrus"
	"math/rand"
	"sort"
)

// constructive heuristic used for the initial state
type Heuristic int

const (
	LARGEST Heuristic = iota
	CLOSEST
	CHEAPEST
)

var heuristic_names = map[Heuristic]string{
	LARGEST:  "largest",
	CLOSEST:  "closest",
	CHEAPEST: "cheapest",
}

func (h Heuristic) String() string {
	if name, ok := heuristic_names[h]; ok {
		return name
	}
	return fmt.Sprintf("heuristic(%d)", int(h))
}

func ParseHeuristic(name string) (Heuristic, error) {
	for h, n := range heuristic_names {
		if n == name {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown heuristic %q", name)
}

// no vehicle can carry some task
var ErrInfeasible = errors.New("infeasible")

// check that the heaviest task fits in the largest vehicle
func check_feasible(vehicles common.Fleet, tasks common.TaskSet) error {
	if len(tasks) == 0 {
		return nil
	}
	if heaviest, largest := tasks.MaxWeight(), vehicles.MaxCapacity(); heaviest > largest {
		return fmt.Errorf(
			"%w: heaviest task weighs %d, largest capacity is %d",
			ErrInfeasible,
			heaviest,
			largest,
		)
	}
	return nil
}

// build first feasible state with heuristic h
func BuildInitial(topology Topology, vehicles common.Fleet, tasks common.TaskSet, h Heuristic) (*State, error) {
	if err := vehicles.Validate(); err != nil {
		log.Panicf("[vrp] invalid fleet: %v", err)
	}
	if err := tasks.Validate(); err != nil {
		log.Panicf("[vrp] invalid tasks: %v", err)
	}
	if err := check_feasible(vehicles, tasks); err != nil {
		return nil, err
	}

	s := NewState(topology, vehicles, tasks)
	switch h {
	case LARGEST:
		order := vehicle_order(vehicles, func(a, b common.Vehicle) bool { return a.Capacity > b.Capacity })
		s.fill_in_order(order, tasks.ByWeight(true))
	case CHEAPEST:
		order := vehicle_order(vehicles, func(a, b common.Vehicle) bool { return a.CostPerKm < b.CostPerKm })
		s.fill_in_order(order, tasks.ByWeight(false))
	case CLOSEST:
		s.assign_closest()
	default:
		log.Panicf("[vrp] heuristic %v not supported", h)
	}

	log.Debugf(
		"[vrp] initial state (%v): %d tasks, %d vehicles, cost %0.2f",
		h,
		len(tasks),
		len(vehicles),
		Objective(s, ModeVehicle),
	)
	return s, nil
}

// vehicle IDs sorted by less; ties broken by ID
func vehicle_order(vehicles common.Fleet, less func(a, b common.Vehicle) bool) []int {
	order := make([]int, len(vehicles))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(vehicles[order[i]], vehicles[order[j]])
	})
	return order
}

// greedily fill vehicles in order; on overflow, deliver everything carried
// and move on to the next vehicle (wrapping around)
func (s *State) fill_in_order(vehicles, tasks []int) {
	bs := new_build_states(s)
	i := 0
	for _, t := range tasks {
		for !s.fits(t, bs[vehicles[i]]) {
			s.flush_deliveries(bs[vehicles[i]])
			i = (i + 1) % len(vehicles)
		}
		s.assign_pickup(t, bs[vehicles[i]])
	}
	for _, b := range bs {
		s.flush_deliveries(b)
	}
}

// assign every task to the nearest vehicle (by home city) with spare
// capacity. Requires check_feasible: the fallback below ignores capacity.
func (s *State) assign_closest() {
	bs := new_build_states(s)
	homes := make(map[int64][]int)
	for _, v := range s.vehicles {
		homes[v.Home] = append(homes[v.Home], v.ID)
	}

	for t := range s.tasks {
		v, last := s.closest_vehicle(t, bs, homes)
		if v < 0 {
			for _, b := range bs {
				s.flush_deliveries(b)
			}
			v, last = s.closest_vehicle(t, bs, homes)
		}
		if v < 0 {
			if last < 0 {
				last = vehicle_order(s.vehicles, func(a, b common.Vehicle) bool { return a.Capacity > b.Capacity })[0]
			}
			log.Warnf("[vrp] task %d forced onto vehicle %d", t, last)
			v = last
		}
		s.assign_pickup(t, bs[v])
	}
	for _, b := range bs {
		s.flush_deliveries(b)
	}
}

// expand from the pickup city in order of distance; return the first vehicle
// with spare capacity (or -1) and the last vehicle examined (or -1)
func (s *State) closest_vehicle(t int, bs []*build_state, homes map[int64][]int) (int, int) {
	origin := s.tasks[t].Pickup
	visited := make(map[int64]bool)
	pq := &city_queue{{city: origin}}
	last := -1
	for pq.Len() > 0 {
		c := heap.Pop(pq).(city_item)
		if visited[c.city] {
			continue
		}
		visited[c.city] = true

		for _, v := range homes[c.city] {
			last = v
			if s.fits(t, bs[v]) {
				return v, last
			}
		}
		for _, n := range s.topology.Neighbors(c.city) {
			if !visited[n] {
				heap.Push(pq, city_item{city: n, dist: s.topology.Distance(origin, n)})
			}
		}
	}
	return -1, last
}

type city_item struct {
	city int64
	dist float64
}

// min-heap of cities by distance, then ID
type city_queue []city_item

func (q city_queue) Len() int { return len(q) }
func (q city_queue) Less(i, j int) bool {
	if q[i].dist == q[j].dist {
		return q[i].city < q[j].city
	}
	return q[i].dist < q[j].dist
}
func (q city_queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *city_queue) Push(x interface{}) { *q = append(*q, x.(city_item)) }
func (q *city_queue) Pop() interface{} {
	old := *q
	x := old[len(old)-1]
	*q = old[:len(old)-1]
	return x
}

// copy state with task appended (pickup then delivery) to the end of a
// uniformly chosen vehicle that can carry it
func InsertRandom(s *State, task common.Task, rng *rand.Rand) (*State, error) {
	var candidates []int
	for _, v := range s.vehicles {
		if v.Capacity >= task.Weight {
			candidates = append(candidates, v.ID)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf(
			"%w: task weighing %d exceeds every capacity",
			ErrInfeasible,
			task.Weight,
		)
	}

	x := s.with_task(task)
	t := len(s.tasks)
	v := candidates[rng.Intn(len(candidates))]
	chain := x.Chain(v)
	b := &build_state{vehicle: v, time: len(chain), previous: None}
	if len(chain) > 0 {
		b.previous = chain[len(chain)-1]
	}
	x.assign_pickup(t, b)
	x.flush_deliveries(b)
	return x, nil
}
