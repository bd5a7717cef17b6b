// Command qroute learns a low-congestion route between two nodes of a road
// graph with tabular Q-learning and prints it.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/dd0wney/cluso-qroute/pkg/logging"
)

func main() {
	var opts options
	flag.StringVar(&opts.graphPath, "graph", "", "Road graph YAML file (required)")
	flag.StringVar(&opts.configPath, "config", "", "Training config YAML file (defaults apply when empty)")
	flag.Uint64Var(&opts.start, "start", 0, "Start node id")
	flag.Uint64Var(&opts.goal, "goal", 0, "Goal node id")
	flag.Uint64Var(&opts.seed, "seed", 0, "Random seed (overrides the config file); with -seeds, the first seed of the sweep")
	flag.IntVar(&opts.episodes, "episodes", 0, "Number of training episodes (overrides the config file)")
	flag.BoolVar(&opts.randomTraffic, "random-traffic", false, "Draw a random cost for every edge; costs in the graph file still win")
	flag.StringVar(&opts.snapshotPath, "snapshot", "", "Write the trained run to this file")
	flag.StringVar(&opts.metadataPath, "metadata", "", "Write run metadata as YAML to this file")
	flag.StringVar(&opts.metricsPath, "metrics", "", "Write Prometheus metrics in text format to this file")
	flag.IntVar(&opts.seeds, "seeds", 1, "Train this many consecutive seeds and keep the best route")
	flag.IntVar(&opts.workers, "workers", runtime.NumCPU(), "Concurrent sessions when -seeds > 1")
	flag.StringVar(&opts.replayPath, "replay", "", "Skip training and replay the route stored in this snapshot")
	flag.StringVar(&opts.mapPath, "map", "", "Write the graph layout with the route highlighted as JSON to this file")
	flag.StringVar(&opts.layout, "layout", "circular", "Route map layout: circular, force or hierarchical")
	flag.StringVar(&opts.saveGraphPath, "save-graph", "", "Write the graph with the edge costs used for training to this YAML file")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (default LOG_LEVEL or info)")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seedSet = true
		}
	})

	level := os.Getenv("LOG_LEVEL")
	if *logLevel != "" {
		level = *logLevel
	}
	logger := logging.NewStderrLogger(logging.ParseLevel(level))
	logging.SetDefaultLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("qroute failed", logging.Error(err))
		stop()
		os.Exit(1)
	}
}
