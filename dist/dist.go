package dist

import (
	"fmt"
	"github.com/mobius-scheduler/pdp/common"
	"math"
	"math/rand"
)

// source of tasks
type Distribution interface {
	Init(Config, *common.Topology) error
	Tasks() common.TaskSet
}

type Config struct {
	Type        string  `json:"type" yaml:"type"`
	Seed        int64   `json:"seed" yaml:"seed"`
	Count       int     `json:"count" yaml:"count"`
	WeightMin   int     `json:"weight_min" yaml:"weight_min"`
	WeightMax   int     `json:"weight_max" yaml:"weight_max"`
	RewardPerKm float64 `json:"reward_per_km" yaml:"reward_per_km"`
	Path        string  `json:"path" yaml:"path"`
}

// create distribution from config
func New(cfg Config, t *common.Topology) (Distribution, error) {
	var d Distribution
	switch cfg.Type {
	case "random", "":
		d = &Random{}
	case "file":
		d = &File{}
	default:
		return nil, fmt.Errorf("distribution type %q not supported", cfg.Type)
	}
	if err := d.Init(cfg, t); err != nil {
		return nil, err
	}
	return d, nil
}

// tasks between uniformly drawn distinct cities; reward proportional to
// the shortest distance between pickup and delivery
type Random struct {
	tasks common.TaskSet
}

func (r *Random) Init(cfg Config, t *common.Topology) error {
	cities := t.Cities()
	if cfg.Count > 0 && len(cities) < 2 {
		return fmt.Errorf("random tasks need at least 2 cities, have %d", len(cities))
	}
	if cfg.WeightMin <= 0 {
		cfg.WeightMin = 1
	}
	if cfg.WeightMax < cfg.WeightMin {
		cfg.WeightMax = cfg.WeightMin
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	r.tasks = make(common.TaskSet, cfg.Count)
	for i := range r.tasks {
		src := cities[rng.Intn(len(cities))].ID
		dst := src
		for dst == src {
			dst = cities[rng.Intn(len(cities))].ID
		}
		reward := 0.0
		if d := t.Distance(src, dst); !math.IsInf(d, 1) {
			reward = math.Round(d * cfg.RewardPerKm)
		}
		r.tasks[i] = common.Task{
			ID:       i,
			Pickup:   src,
			Delivery: dst,
			Weight:   cfg.WeightMin + rng.Intn(cfg.WeightMax-cfg.WeightMin+1),
			Reward:   reward,
		}
	}
	return nil
}

func (r *Random) Tasks() common.TaskSet { return r.tasks }

// tasks listed in a JSON or YAML file
type File struct {
	tasks common.TaskSet
}

func (f *File) Init(cfg Config, t *common.Topology) error {
	var tasks common.TaskSet
	if err := common.ReadFile(cfg.Path, &tasks); err != nil {
		return err
	}
	for _, task := range tasks {
		if !t.HasCity(task.Pickup) || !t.HasCity(task.Delivery) {
			return fmt.Errorf("%v references unknown city", task)
		}
	}
	if err := tasks.Validate(); err != nil {
		return err
	}
	f.tasks = tasks
	return nil
}

func (f *File) Tasks() common.TaskSet { return f.tasks }
