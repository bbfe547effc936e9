package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempScenario(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("writing temp scenario: %v", err)
	}
	return path
}

func TestLoadScenario_ParsesTopologyAndStations(t *testing.T) {
	yamlBody := `
num_vertices: 2
edges:
  - source: 0
    target: 1
    type: 0
stations:
  - type: 0
    kind: basic
    num_servers: 2
    buffer: -1
    arrival:
      kind: exponential
      rate: 0.5
    service:
      kind: deterministic
      value: 1.0
agent_cap: 100
seed: 7
init:
  edge_indices: [0]
events: 500
`
	path := writeTempScenario(t, yamlBody)
	sc, err := LoadScenario(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, sc.NumVertices)
	assert.Len(t, sc.Edges, 1)
	assert.Equal(t, 100, sc.AgentCap)
	assert.Equal(t, int64(7), sc.Seed)
	assert.Equal(t, 500, sc.Events)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	assert.Error(t, err)
}

func TestLoadScenario_DefaultsAgentCapToUnbounded(t *testing.T) {
	path := writeTempScenario(t, "num_vertices: 1\nedges: []\n")
	sc, err := LoadScenario(path)
	assert.NoError(t, err)
	assert.Equal(t, -1, sc.AgentCap)
}

func TestScenario_BuildNetwork(t *testing.T) {
	yamlBody := `
num_vertices: 1
edges:
  - source: 0
    target: 0
    type: 0
stations:
  - type: 0
    kind: basic
    num_servers: 1
    buffer: -1
    arrival:
      kind: deterministic
      value: 1
    service:
      kind: deterministic
      value: 0.5
seed: 3
init:
  edge_indices: [0]
`
	path := writeTempScenario(t, yamlBody)
	sc, err := LoadScenario(path)
	assert.NoError(t, err)

	net, err := sc.BuildNetwork()
	assert.NoError(t, err)
	assert.NotNil(t, net)
	assert.Len(t, net.Edge2Station, 1)
}

func TestScenario_BuildNetwork_UnknownStationKind(t *testing.T) {
	yamlBody := `
num_vertices: 1
edges:
  - source: 0
    target: 0
    type: 0
stations:
  - type: 0
    kind: nonexistent
`
	path := writeTempScenario(t, yamlBody)
	sc, err := LoadScenario(path)
	assert.NoError(t, err)

	_, err = sc.BuildNetwork()
	assert.Error(t, err)
}
