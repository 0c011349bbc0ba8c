package common

import (
	"fmt"
	"sort"
)

// schema for pickup-and-delivery task
type Task struct {
	ID       int     `json:"id" yaml:"id"`
	Pickup   int64   `json:"pickup" yaml:"pickup"`
	Delivery int64   `json:"delivery" yaml:"delivery"`
	Weight   int     `json:"weight" yaml:"weight"`
	Reward   float64 `json:"reward" yaml:"reward"`
}

func (t Task) String() string {
	return fmt.Sprintf("(task %d: %d -> %d, w %d, r %0.1f)", t.ID, t.Pickup, t.Delivery, t.Weight, t.Reward)
}

// task set, indexed by task ID
type TaskSet []Task

// check that task IDs are dense (0..N-1, in order) and weights positive
func (ts TaskSet) Validate() error {
	for i, t := range ts {
		if t.ID != i {
			return fmt.Errorf("task at index %d has id %d", i, t.ID)
		}
		if t.Weight <= 0 {
			return fmt.Errorf("task %d has non-positive weight %d", t.ID, t.Weight)
		}
	}
	return nil
}

// get heaviest task weight (0 if empty)
func (ts TaskSet) MaxWeight() int {
	var max int
	for _, t := range ts {
		if t.Weight > max {
			max = t.Weight
		}
	}
	return max
}

// get total reward of task set
func (ts TaskSet) TotalReward() float64 {
	var total float64
	for _, t := range ts {
		total += t.Reward
	}
	return total
}

// copy task set, appending task (reassigned the next dense ID)
func (ts TaskSet) With(t Task) TaskSet {
	x := make(TaskSet, len(ts), len(ts)+1)
	copy(x, ts)
	t.ID = len(ts)
	return append(x, t)
}

// copy task set with IDs reassigned densely, in order
func (ts TaskSet) Renumber() TaskSet {
	x := make(TaskSet, len(ts))
	for i, t := range ts {
		t.ID = i
		x[i] = t
	}
	return x
}

// get task IDs sorted by weight; ties broken by ID
func (ts TaskSet) ByWeight(desc bool) []int {
	ids := make([]int, len(ts))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ts[ids[i]], ts[ids[j]]
		if a.Weight == b.Weight {
			return a.ID < b.ID
		}
		if desc {
			return a.Weight > b.Weight
		}
		return a.Weight < b.Weight
	})
	return ids
}
