package common

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"math"
	"sort"
)

const EARTH_RADIUS = 6.3781 * 1e6

// schema for location (city coordinates)
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

type City struct {
	ID       int64    `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Location Location `json:"location" yaml:"location"`
}

// undirected road; zero length means "derive from coordinates"
type Road struct {
	From   int64   `json:"from" yaml:"from"`
	To     int64   `json:"to" yaml:"to"`
	Length float64 `json:"length" yaml:"length"`
}

type TopologyConfig struct {
	Cities []City `json:"cities" yaml:"cities"`
	Roads  []Road `json:"roads" yaml:"roads"`
}

// road network with precomputed single-source shortest paths
type Topology struct {
	cities map[int64]City
	ids    []int64
	graph  *simple.WeightedUndirectedGraph
	trees  map[int64]path.Shortest
}

// equirectangular distance between two locations, in km
func geo_distance(src, dst Location) float64 {
	dx := (dst.Longitude - src.Longitude) *
		math.Cos(0.5*(src.Latitude+dst.Latitude)*math.Pi/180) * math.Pi / 180 * EARTH_RADIUS
	dy := (dst.Latitude - src.Latitude) * math.Pi / 180 * EARTH_RADIUS
	return math.Sqrt(math.Pow(dx, 2)+math.Pow(dy, 2)) / 1000
}

func NewTopology(cfg TopologyConfig) (*Topology, error) {
	t := &Topology{
		cities: make(map[int64]City),
		graph:  simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		trees:  make(map[int64]path.Shortest),
	}
	for _, c := range cfg.Cities {
		if _, exists := t.cities[c.ID]; exists {
			return nil, fmt.Errorf("duplicate city %d", c.ID)
		}
		t.cities[c.ID] = c
		t.ids = append(t.ids, c.ID)
		t.graph.AddNode(simple.Node(c.ID))
	}
	sort.Slice(t.ids, func(i, j int) bool { return t.ids[i] < t.ids[j] })

	for _, r := range cfg.Roads {
		src, ok := t.cities[r.From]
		if !ok {
			return nil, fmt.Errorf("road %d-%d: unknown city %d", r.From, r.To, r.From)
		}
		dst, ok := t.cities[r.To]
		if !ok {
			return nil, fmt.Errorf("road %d-%d: unknown city %d", r.From, r.To, r.To)
		}
		if r.From == r.To {
			return nil, fmt.Errorf("road %d-%d is a loop", r.From, r.To)
		}
		length := r.Length
		if length == 0 {
			length = geo_distance(src.Location, dst.Location)
		}
		if length < 0 {
			return nil, fmt.Errorf("road %d-%d has negative length %v", r.From, r.To, length)
		}
		t.graph.SetWeightedEdge(
			t.graph.NewWeightedEdge(simple.Node(r.From), simple.Node(r.To), length),
		)
	}

	// shortest path tree from every city
	for _, id := range t.ids {
		t.trees[id] = path.DijkstraFrom(simple.Node(id), t.graph)
	}
	log.Debugf("[common] topology with %d cities, %d roads", len(t.ids), len(cfg.Roads))
	return t, nil
}

// load topology config from file (JSON or YAML)
func LoadTopology(path string) (*Topology, error) {
	var cfg TopologyConfig
	if err := ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	return NewTopology(cfg)
}

func (t *Topology) tree(c int64) path.Shortest {
	tree, ok := t.trees[c]
	if !ok {
		log.Panicf("[common] unknown city %d", c)
	}
	return tree
}

// shortest road distance between cities (+Inf if unreachable)
func (t *Topology) Distance(a, b int64) float64 {
	if a == b {
		t.tree(a)
		return 0
	}
	return t.tree(a).WeightTo(b)
}

// cities adjacent to c, sorted by ID
func (t *Topology) Neighbors(c int64) []int64 {
	t.tree(c)
	var out []int64
	nodes := t.graph.From(c)
	for nodes.Next() {
		out = append(out, nodes.Node().ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// cities visited when driving from a to b, excluding a and including b
func (t *Topology) PathTo(a, b int64) []int64 {
	if a == b {
		return nil
	}
	nodes, weight := t.tree(a).To(b)
	if math.IsInf(weight, 1) || len(nodes) == 0 {
		log.Panicf("[common] no path from city %d to city %d", a, b)
	}
	out := make([]int64, 0, len(nodes)-1)
	for _, n := range nodes[1:] {
		out = append(out, n.ID())
	}
	return out
}

func (t *Topology) HasCity(id int64) bool {
	_, ok := t.cities[id]
	return ok
}

func (t *Topology) City(id int64) City {
	c, ok := t.cities[id]
	if !ok {
		log.Panicf("[common] unknown city %d", id)
	}
	return c
}

// all cities, sorted by ID
func (t *Topology) Cities() []City {
	out := make([]City, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.cities[id]
	}
	return out
}
