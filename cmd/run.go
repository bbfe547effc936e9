// cmd/run.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/qnetsim/qnetsim/config"
	"github.com/qnetsim/qnetsim/sim"
)

var (
	scenarioPath string
	events       int
	duration     float64
	outPath      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a queueing-network scenario",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		sc, err := config.LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Loading scenario: %v", err)
		}

		net, err := sc.BuildNetwork()
		if err != nil {
			logrus.Fatalf("Building network: %v", err)
		}

		n := events
		if n == 0 {
			n = sc.Events
		}
		d := duration
		if d == 0 {
			d = sc.Duration
		}

		logrus.Infof("Starting simulation with %d vertices, %d edges, agent_cap=%d, seed=%d",
			sc.NumVertices, len(sc.Edges), sc.AgentCap, sc.Seed)

		sel := sim.Selector{EdgeIndices: sc.Init.EdgeIndices, EdgeTypes: sc.Init.EdgeTypes, Count: sc.Init.Count}
		if err := net.Initialize(sel); err != nil {
			logrus.Fatalf("Initializing network: %v", err)
		}

		if err := net.Simulate(sim.SimulateOpts{N: n, T: d}); err != nil {
			logrus.Fatalf("Simulating: %v", err)
		}

		logrus.Infof("Simulation complete: %d events, current_time=%.6f", net.NumEvents, net.CurrentTime)

		if outPath != "" {
			if err := writeRecords(net.FetchData(), outPath); err != nil {
				logrus.Fatalf("Writing records: %v", err)
			}
		}
	},
}

func writeRecords(records []sim.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file (required)")
	runCmd.Flags().IntVar(&events, "events", 0, "Number of events to simulate (overrides the scenario file's events field)")
	runCmd.Flags().Float64Var(&duration, "duration", 0, "Simulated time to advance (overrides the scenario file's duration field)")
	runCmd.Flags().StringVar(&outPath, "out", "", "Optional path to write collected records as JSON")
	runCmd.MarkFlagRequired("scenario")
}
