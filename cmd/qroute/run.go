package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dd0wney/cluso-qroute/pkg/environment"
	"github.com/dd0wney/cluso-qroute/pkg/logging"
	"github.com/dd0wney/cluso-qroute/pkg/metrics"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
	"github.com/dd0wney/cluso-qroute/pkg/rollout"
	"github.com/dd0wney/cluso-qroute/pkg/snapshot"
	"github.com/dd0wney/cluso-qroute/pkg/traffic"
	"github.com/dd0wney/cluso-qroute/pkg/training"
	"github.com/dd0wney/cluso-qroute/pkg/visualization"
)

var errUsage = errors.New("usage")

type options struct {
	graphPath     string
	configPath    string
	start, goal   uint64
	seed          uint64
	seedSet       bool
	episodes      int
	randomTraffic bool
	snapshotPath  string
	metadataPath  string
	metricsPath   string
	replayPath    string
	seeds         int
	workers       int
	mapPath       string
	layout        string
	saveGraphPath string
}

// run loads inputs, trains or replays, prints the report and writes outputs
func run(ctx context.Context, opts options, out io.Writer, logger logging.Logger) error {
	if opts.graphPath == "" {
		return fmt.Errorf("%w: -graph is required", errUsage)
	}

	doc, err := roadgraph.LoadYAML(opts.graphPath)
	if err != nil {
		return err
	}
	g, err := doc.Build()
	if err != nil {
		return err
	}
	logger.Info("graph loaded",
		logging.String("path", opts.graphPath),
		logging.Int("nodes", g.NodeCount()),
		logging.Int("edges", g.EdgeCount()))

	if opts.replayPath != "" {
		return replay(opts, g, doc, out, logger)
	}

	cfg := training.DefaultConfig()
	if opts.configPath != "" {
		if cfg, err = training.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.seedSet {
		cfg.Seed = opts.seed
	}
	if opts.episodes > 0 {
		cfg.Episodes = opts.episodes
	}

	start, goal := roadgraph.NodeID(opts.start), roadgraph.NodeID(opts.goal)
	if err := training.ValidateEndpoints(g, start, goal); err != nil {
		return err
	}

	costs := traffic.FromDocument(doc)
	if opts.randomTraffic {
		generated, err := traffic.Generate(g, training.NewTrafficRand(cfg.Seed), cfg.CostLow, cfg.CostHigh)
		if err != nil {
			return err
		}
		generated.Merge(costs)
		costs = generated
	}

	if err := writeGraph(opts.saveGraphPath, g, costs); err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	session, res, err := train(ctx, opts, g, costs, start, goal, cfg, logger, reg)
	if err != nil {
		_ = writeMetrics(opts.metricsPath, reg)
		return err
	}
	// a sweep reports the chosen run's own registry
	reg = session.Metrics()

	if err := renderReport(out, reportFromResult(res, start, goal)); err != nil {
		return err
	}

	if err := writeRouteMap(opts, g, costs, res.Path, start, goal, cfg.Seed); err != nil {
		return err
	}

	if opts.snapshotPath != "" || opts.metadataPath != "" {
		snap, err := snapshot.FromSession(session)
		if err != nil {
			return err
		}
		if opts.snapshotPath != "" {
			if err := snapshot.Save(opts.snapshotPath, snap); err != nil {
				return err
			}
			logger.Info("snapshot written", logging.String("path", opts.snapshotPath))
		}
		if err := writeMetadata(opts.metadataPath, snap); err != nil {
			return err
		}
	}

	return writeMetrics(opts.metricsPath, reg)
}

// train runs a single session recording into reg, or a sweep over consecutive
// seeds when more than one is requested. The sweep keeps its best run. Either
// way a session trains on the stream of its own seed, so a seed reproduces the
// same run alone or inside a sweep.
func train(ctx context.Context, opts options, g *roadgraph.Graph, costs *traffic.Table, start, goal roadgraph.NodeID,
	cfg training.Config, logger logging.Logger, reg *metrics.Registry) (*training.Session, *training.Result, error) {
	if opts.seeds <= 1 {
		session, err := training.NewSession(g, costs, start, goal, cfg,
			training.WithLogger(logger),
			training.WithMetrics(reg))
		if err != nil {
			return nil, nil, err
		}
		res, err := session.Train(ctx)
		if err != nil {
			return nil, nil, err
		}
		return session, res, nil
	}

	runs, err := training.Sweep(ctx, g, costs, start, goal, cfg, training.SweepOptions{
		Seeds:   training.Seeds(cfg.Seed, opts.seeds),
		Workers: opts.workers,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, err
	}
	best := runs[0]
	logger.Info("best seed selected", logging.Uint64("seed", best.Seed), logging.Int("candidates", len(runs)))
	return best.Session, best.Result, nil
}

// replay restores a stored agent and walks its greedy route on the given graph
func replay(opts options, g *roadgraph.Graph, doc *roadgraph.Document, out io.Writer, logger logging.Logger) error {
	snap, err := snapshot.Load(opts.replayPath)
	if err != nil {
		return err
	}
	logger.Info("snapshot loaded", logging.RunID(snap.RunID), logging.String("path", opts.replayPath))

	costs := traffic.FromDocument(doc)
	rng := training.NewRand(snap.Config.Seed)
	env, err := environment.New(g, costs, snap.Start, snap.Goal, snap.Config.EnvironmentOptions(), rng)
	if err != nil {
		return err
	}
	if env.ObservationSpace() != len(snap.Nodes) || env.ActionSpace() != snap.Actions {
		return fmt.Errorf("%w: snapshot was trained on a %d×%d problem, graph gives %d×%d", snapshot.ErrShapeMismatch,
			len(snap.Nodes), snap.Actions, env.ObservationSpace(), env.ActionSpace())
	}
	for i, id := range snap.Nodes {
		if at, _ := env.NodeAt(i); at != id {
			return fmt.Errorf("%w: state %d is node %d in the snapshot and %d in the graph", snapshot.ErrShapeMismatch, i, id, at)
		}
	}

	ag, err := snap.Agent(rng)
	if err != nil {
		return err
	}
	path, err := rollout.GreedyPath(ag, env)
	if err != nil {
		return err
	}

	if err := writeRouteMap(opts, g, costs, path, snap.Start, snap.Goal, snap.Config.Seed); err != nil {
		return err
	}

	return renderReport(out, report{
		RunID:        snap.RunID,
		Start:        snap.Start,
		Goal:         snap.Goal,
		Path:         path,
		Cost:         path.Cost(costs),
		ReachedGoal:  path.Reaches(snap.Goal),
		Episodes:     snap.Episodes,
		GoalEpisodes: snap.GoalEpisodes,
		Epsilon:      snap.Epsilon,
		Replayed:     true,
	})
}

// writeRouteMap exports the laid-out graph with path highlighted
func writeRouteMap(opts options, g *roadgraph.Graph, costs visualization.Costs, path []roadgraph.NodeID, start, goal roadgraph.NodeID, seed uint64) error {
	if opts.mapPath == "" {
		return nil
	}
	cfg := visualization.DefaultLayoutConfig()

	var layout visualization.Layout
	switch opts.layout {
	case "", "circular":
		layout = visualization.NewCircularLayout(cfg)
	case "force":
		layout = visualization.NewForceDirectedLayout(cfg, training.NewRand(seed))
	case "hierarchical":
		layout = visualization.NewHierarchicalLayout(cfg, start)
	default:
		return fmt.Errorf("%w: unknown layout %q", errUsage, opts.layout)
	}

	return visualization.BuildRouteMap(g, costs, path, goal, layout, cfg).WriteFile(opts.mapPath)
}

// writeGraph saves the graph with the cost of every edge as trained on, so a
// run with random traffic can be replayed against the same costs
func writeGraph(path string, g *roadgraph.Graph, costs *traffic.Table) error {
	if path == "" {
		return nil
	}
	doc := g.Document()
	for i, e := range doc.Edges {
		cost := costs.CostOf(e.From, e.To)
		doc.Edges[i].Cost = &cost
	}
	return doc.WriteFile(path)
}

func writeMetadata(path string, snap *snapshot.Snapshot) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	if err := snapshot.WriteMetadata(f, snap); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeMetrics(path string, reg *metrics.Registry) error {
	if path == "" {
		return nil
	}
	reg.UpdateSystemMetrics()
	return reg.WriteTextfile(path)
}
