package main

import (
	"flag"
	"fmt"
	"github.com/google/uuid"
	"github.com/mobius-scheduler/pdp/auction"
	"github.com/mobius-scheduler/pdp/common"
	"github.com/mobius-scheduler/pdp/dist"
	"github.com/mobius-scheduler/pdp/metrics"
	"github.com/mobius-scheduler/pdp/vrp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"os"
	"time"
)

type Config struct {
	Mode         string       `json:"mode"`
	Vehicles     common.Fleet `json:"vehicles"`
	Tasks        dist.Config  `json:"tasks"`
	Heuristic    string       `json:"heuristic"`
	P            float64      `json:"p"`
	PlanMs       int          `json:"plan_ms"`
	BidMs        int          `json:"bid_ms"`
	MarginMs     int          `json:"margin_ms"`
	Seed         int64        `json:"seed"`
	Markup       float64      `json:"markup"`
	Opponent     string       `json:"opponent"`
	TopologyPath string       `json:"topology_path"`
	Dir          string       `json:"dir"`
	Verbose      bool         `json:"verbose"`
	MetricsAddr  string       `json:"metrics_addr"`
}

// Load vehicle from config file and replicate
func load_vehicles(path string, num int) common.Fleet {
	if num > 0 {
		var v common.Vehicle
		common.FromFile(path, &v)

		vehicles := make(common.Fleet, num)
		for i := range vehicles {
			v.ID = i
			vehicles[i] = v
		}
		return vehicles
	} else {
		var vehicles common.Fleet
		common.FromFile(path, &vehicles)
		return vehicles
	}
}

// Create directory to save logs
func create_dir(path string) {
	if err := os.MkdirAll(path, 0755); err != nil {
		log.Fatalf("[main] error creating directory %s", path)
	}
}

func duration_ms(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func solver_for(cfg Config, h vrp.Heuristic) vrp.Solver {
	switch cfg.Mode {
	case "plan":
		return &vrp.SlsSolver{
			Heuristic: h,
			P:         cfg.P,
			Budget:    duration_ms(cfg.PlanMs),
			Margin:    duration_ms(cfg.MarginMs),
			Seed:      cfg.Seed,
		}
	case "naive":
		return &vrp.NaiveSolver{}
	case "round_robin":
		return &vrp.RoundRobinSolver{}
	}
	log.Fatalf("[main] mode %s not supported", cfg.Mode)
	return nil
}

func plan(cfg Config, topology *common.Topology, tasks common.TaskSet, h vrp.Heuristic, dir string) {
	solver := solver_for(cfg, h)
	solver.Set(topology, cfg.Vehicles, tasks)
	state, err := solver.Solve()
	if err != nil {
		log.Fatalf("[main] %s: %v", solver.Name(), err)
	}
	if err := state.Validate(); err != nil {
		log.Fatalf("[main] %s produced invalid plan: %v", solver.Name(), err)
	}

	sched := vrp.NewSchedule(state, topology)
	sched.Stats.Solver = solver.Name()
	if sls, ok := solver.(*vrp.SlsSolver); ok {
		sched.Stats.Iterations = sls.Stats().Iterations
		sched.Stats.Initial = sls.Stats().InitialCost
	}
	log.Printf("[main] %v, profit %0.2f", sched, sched.Profit())
	for _, r := range sched.Routes {
		log.Debugf("[main] vehicle %d: %v", r.VehicleID, r.Steps)
	}

	if dir != "" {
		common.ToFile(dir+"/schedule.json", sched)
	}
}

func run_auction(cfg Config, topology *common.Topology, tasks common.TaskSet, h vrp.Heuristic, dir string) {
	agent := &auction.Agent{
		Id:       0,
		Topology: topology,
		Vehicles: cfg.Vehicles,
		Cfg: auction.Config{
			BidBudget:  duration_ms(cfg.BidMs),
			PlanBudget: duration_ms(cfg.PlanMs),
			Margin:     duration_ms(cfg.MarginMs),
			P:          cfg.P,
			Heuristic:  h,
			Seed:       cfg.Seed,
			Markup:     cfg.Markup,
			Undercut:   0.1,
		},
	}
	agent.Init()

	var opponent auction.Bidder
	switch cfg.Opponent {
	case "naive":
		opponent = &auction.NaiveBidder{Id: 1, Topology: topology, Vehicles: cfg.Vehicles, Markup: cfg.Markup}
	case "agent":
		a := &auction.Agent{Id: 1, Topology: topology, Vehicles: cfg.Vehicles, Cfg: agent.Cfg}
		a.Cfg.Seed = cfg.Seed + 1
		a.Init()
		opponent = a
	default:
		log.Fatalf("[main] opponent %s not supported", cfg.Opponent)
	}

	house := auction.House{
		Bidders: []auction.Bidder{agent, opponent},
		Tasks:   tasks,
		Dir:     dir,
	}
	outcomes, err := house.Run()
	if err != nil {
		log.Fatalf("[main] auction: %v", err)
	}
	if dir != "" {
		common.ToFile(dir+"/outcomes.json", outcomes)
	}
}

func main() {
	var cfg Config
	flag.StringVar(
		&cfg.Mode,
		"mode",
		"plan",
		"planner mode (i.e., plan, naive, round_robin, auction)",
	)
	flag.StringVar(
		&cfg.TopologyPath,
		"topology",
		"configs/topology.yaml",
		"path to topology (cities, roads) file",
	)
	flag.StringVar(
		&cfg.Heuristic,
		"heuristic",
		"largest",
		"initial solution heuristic (largest, closest, cheapest)",
	)
	flag.Float64Var(
		&cfg.P,
		"p",
		0.8,
		"probability of choosing a best neighbour (1 = greedy, 0 = random walk)",
	)
	flag.IntVar(
		&cfg.PlanMs,
		"plan_ms",
		30000,
		"time budget for planning (milliseconds)",
	)
	flag.IntVar(
		&cfg.BidMs,
		"bid_ms",
		5000,
		"time budget per bid (milliseconds)",
	)
	flag.IntVar(
		&cfg.MarginMs,
		"margin_ms",
		int(vrp.DEFAULT_MARGIN/time.Millisecond),
		"safety margin before each deadline (milliseconds)",
	)
	flag.Int64Var(
		&cfg.Seed,
		"seed",
		12345,
		"random seed",
	)
	flag.Float64Var(
		&cfg.Markup,
		"markup",
		0.1,
		"bid markup over marginal cost",
	)
	flag.StringVar(
		&cfg.Opponent,
		"opponent",
		"naive",
		"auction opponent (naive, agent)",
	)
	flag.StringVar(
		&cfg.Dir,
		"dir",
		"",
		"directory to save logs",
	)
	flag.StringVar(
		&cfg.MetricsAddr,
		"metrics",
		"",
		"address to serve prometheus metrics on (e.g., :9090)",
	)
	flag.BoolVar(
		&cfg.Verbose,
		"verbose",
		false,
		"enable verbose logging",
	)
	var vehicles_path = flag.String(
		"cfg_vehicles",
		"configs/vehicles.yaml",
		"path to vehicles config file",
	)
	var vehicles_num = flag.Int(
		"num_vehicles",
		0,
		"number of vehicles (replicate config)",
	)
	var tasks_path = flag.String(
		"cfg_tasks",
		"",
		"path to task distribution config file",
	)
	flag.IntVar(
		&cfg.Tasks.Count,
		"num_tasks",
		10,
		"number of random tasks (without -cfg_tasks)",
	)
	flag.Parse()

	// set logging level
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.MetricsAddr != "" {
		metrics.RegisterDefault()
		go func() {
			handler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
			if err := http.ListenAndServe(cfg.MetricsAddr, handler); err != nil {
				log.Warnf("[main] metrics server: %v", err)
			}
		}()
	}

	// load topology, vehicles, tasks
	topology, err := common.LoadTopology(cfg.TopologyPath)
	if err != nil {
		log.Fatalf("[main] topology: %v", err)
	}
	cfg.Vehicles = load_vehicles(*vehicles_path, *vehicles_num)
	if err := cfg.Vehicles.Validate(); err != nil {
		log.Fatalf("[main] vehicles: %v", err)
	}
	for _, v := range cfg.Vehicles {
		if !topology.HasCity(v.Home) {
			log.Fatalf("[main] vehicle %d has unknown home city %d", v.ID, v.Home)
		}
	}
	if *tasks_path != "" {
		common.FromFile(*tasks_path, &cfg.Tasks)
	} else {
		cfg.Tasks.Type = "random"
		cfg.Tasks.Seed = cfg.Seed
		cfg.Tasks.WeightMin, cfg.Tasks.WeightMax = 1, 10
		cfg.Tasks.RewardPerKm = 10
	}
	d, err := dist.New(cfg.Tasks, topology)
	if err != nil {
		log.Fatalf("[main] tasks: %v", err)
	}
	tasks := d.Tasks()

	h, err := vrp.ParseHeuristic(cfg.Heuristic)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	// print config
	log.Printf("%+v", cfg)

	var dir string
	if cfg.Dir != "" {
		dir = fmt.Sprintf("%s/%s/%s/", cfg.Dir, cfg.Mode, uuid.New())
		create_dir(dir)
		common.ToFile(dir+"/config.cfg", cfg)
		common.ToFile(dir+"/tasks.json", tasks)
	}

	switch cfg.Mode {
	case "plan", "naive", "round_robin":
		plan(cfg, topology, tasks, h, dir)
	case "auction":
		run_auction(cfg, topology, tasks, h, dir)
	default:
		log.Fatalf("[main] mode %s not supported", cfg.Mode)
	}
}
