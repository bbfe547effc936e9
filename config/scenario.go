// Package config loads a network topology and station configuration from a
// YAML scenario file, grounded on the teacher's YAML-adjacent config
// loaders (cmd/hfconfig.go, cmd/workload_config.go use JSON/CSV; here the
// domain calls for a single declarative topology document, so we reach for
// gopkg.in/yaml.v3 as the rest of the example pack does for config).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qnetsim/qnetsim/sim"
)

// EdgeConfig is one edge of the topology section of a scenario file.
type EdgeConfig struct {
	Source int `yaml:"source"`
	Target int `yaml:"target"`
	Type   int `yaml:"type"`
}

// DelayConfig mirrors sim.DelaySpec in YAML-friendly field names.
type DelayConfig struct {
	Kind  string  `yaml:"kind"`
	Rate  float64 `yaml:"rate"`
	Value float64 `yaml:"value"`
	Low   float64 `yaml:"low"`
	High  float64 `yaml:"high"`
}

func (d DelayConfig) toSpec() sim.DelaySpec {
	return sim.DelaySpec{Kind: d.Kind, Rate: d.Rate, Value: d.Value, Low: d.Low, High: d.High}
}

// StationConfig is the per-edge-type station class entry of a scenario
// file (spec §6 "station factory contract": edge type -> station class,
// construction args).
type StationConfig struct {
	Type       int         `yaml:"type"`
	Kind       string      `yaml:"kind"` // "basic" | "loss" | "resource" | "informational"
	NumServers int         `yaml:"num_servers"`
	Buffer     int         `yaml:"buffer"`
	Arrival    DelayConfig `yaml:"arrival"`
	Service    DelayConfig `yaml:"service"`
}

func (c StationConfig) kind() (sim.Kind, error) {
	switch c.Kind {
	case "basic", "":
		return sim.KindBasic, nil
	case "loss":
		return sim.KindLoss, nil
	case "resource":
		return sim.KindResource, nil
	case "informational":
		return sim.KindInformational, nil
	default:
		return 0, fmt.Errorf("config: unknown station kind %q", c.Kind)
	}
}

// RoutingConfig is one vertex's explicit routing row, keyed by vertex
// index; Probabilities is aligned to that vertex's out-edges in topology
// listing order.
type RoutingConfig struct {
	Vertex        int       `yaml:"vertex"`
	Probabilities []float64 `yaml:"probabilities"`
}

// InitConfig mirrors sim.Selector for the scenario file's activation list.
type InitConfig struct {
	EdgeIndices []int `yaml:"edge_indices"`
	EdgeTypes   []int `yaml:"edge_types"`
	Count       int   `yaml:"count"`
}

func (c InitConfig) toSelector() sim.Selector {
	return sim.Selector{
		EdgeIndices: c.EdgeIndices,
		EdgeTypes:   c.EdgeTypes,
		Count:       c.Count,
	}
}

// Scenario is the root document of a scenario YAML file.
type Scenario struct {
	NumVertices int             `yaml:"num_vertices"`
	Edges       []EdgeConfig    `yaml:"edges"`
	Stations    []StationConfig `yaml:"stations"`
	Routing     []RoutingConfig `yaml:"routing"`
	Init        InitConfig      `yaml:"init"`
	AgentCap    int             `yaml:"agent_cap"`
	Seed        int64           `yaml:"seed"`
	Blocking    string          `yaml:"blocking"` // "loss" (default) | "congestion"
	Events      int             `yaml:"events"`
	Duration    float64         `yaml:"duration"`
}

// LoadScenario reads and parses the YAML scenario file at path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("config: parse scenario: %w", err)
	}
	if sc.AgentCap == 0 {
		sc.AgentCap = -1
	}
	return &sc, nil
}

// BuildNetwork constructs a *sim.Network from the scenario document,
// registering one StationBuilder per declared edge type. It does not
// initialize the network; the activation list is in sc.Init.
func (sc *Scenario) BuildNetwork() (*sim.Network, error) {
	topo := sim.Topology{NumVertices: sc.NumVertices}
	for _, e := range sc.Edges {
		topo.Edges = append(topo.Edges, sim.EdgeDef{Source: e.Source, Target: e.Target, Type: e.Type})
	}

	builders := make(map[int]sim.StationBuilder, len(sc.Stations))
	for _, st := range sc.Stations {
		kind, err := st.kind()
		if err != nil {
			return nil, err
		}
		spec := sim.StationSpec{
			Kind:       kind,
			NumServers: st.NumServers,
			Buffer:     st.Buffer,
			Arrival:    st.Arrival.toSpec(),
			Service:    st.Service.toSpec(),
		}
		builders[st.Type] = sim.NewStationBuilder(spec)
	}

	net, err := sim.NewNetwork(topo, builders, sc.AgentCap, sc.Seed)
	if err != nil {
		return nil, fmt.Errorf("config: build network: %w", err)
	}

	if sc.Blocking == "congestion" {
		net.Blocking = sim.BlockingCongestion
	}

	if len(sc.Routing) > 0 {
		vectors := make(map[int][]float64, len(sc.Routing))
		for _, r := range sc.Routing {
			vectors[r.Vertex] = r.Probabilities
		}
		if err := net.SetRouting(vectors); err != nil {
			return nil, fmt.Errorf("config: apply routing: %w", err)
		}
	}

	return net, nil
}
