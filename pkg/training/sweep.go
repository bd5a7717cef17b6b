package training

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/dd0wney/cluso-qroute/pkg/environment"
	"github.com/dd0wney/cluso-qroute/pkg/logging"
	"github.com/dd0wney/cluso-qroute/pkg/parallel"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
	"github.com/dd0wney/cluso-qroute/pkg/validation"
)

// ErrNoSeeds is returned by Sweep when given nothing to run
var ErrNoSeeds = errors.New("sweep needs at least one seed")

// SweepRun is one seed's session and its outcome
type SweepRun struct {
	Seed    uint64
	Session *Session
	Result  *Result
}

// SweepOptions controls a multi-seed sweep
type SweepOptions struct {
	Seeds []uint64
	// Workers bounds concurrent sessions; zero means runtime.NumCPU()
	Workers int
	Logger  logging.Logger
}

// Sweep trains one independent session per seed, up to Workers at a time.
// Each session owns its rng and its metrics registry (Session.Metrics), so
// gauges of concurrent runs never overwrite each other; costs are only read
// and may be shared. Runs are returned best first: goal-reaching before not,
// then cheaper, then shorter, then lower seed. Any failed run fails the sweep.
func Sweep(ctx context.Context, g *roadgraph.Graph, costs environment.CostFunc, start, goal roadgraph.NodeID, cfg Config, opts SweepOptions) ([]SweepRun, error) {
	if len(opts.Seeds) == 0 {
		return nil, ErrNoSeeds
	}
	logger := logging.OrDefault(opts.Logger)

	workers := validation.DefaultOr(opts.Workers, runtime.NumCPU())

	runs, err := parallel.Map(ctx, workers, len(opts.Seeds), logger, func(ctx context.Context, i int) (SweepRun, error) {
		seeded := cfg
		seeded.Seed = opts.Seeds[i]

		s, err := NewSession(g, costs, start, goal, seeded, WithLogger(logger))
		if err != nil {
			return SweepRun{}, fmt.Errorf("seed %d: %w", seeded.Seed, err)
		}
		res, err := s.Train(ctx)
		if err != nil {
			return SweepRun{}, fmt.Errorf("seed %d: %w", seeded.Seed, err)
		}
		return SweepRun{Seed: seeded.Seed, Session: s, Result: res}, nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(runs, compareRuns)
	best := runs[0]
	logger.Info("sweep finished",
		logging.Int("runs", len(runs)),
		logging.Uint64("best_seed", best.Seed),
		logging.Path(best.Result.Path.String()),
		logging.Float64("best_cost", best.Result.Cost))
	return runs, nil
}

func compareRuns(a, b SweepRun) int {
	if a.Result.ReachedGoal != b.Result.ReachedGoal {
		if a.Result.ReachedGoal {
			return -1
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(a.Result.Cost, b.Result.Cost),
		cmp.Compare(len(a.Result.Path), len(b.Result.Path)),
		cmp.Compare(a.Seed, b.Seed),
	)
}

// Seeds returns n consecutive seeds starting at first
func Seeds(first uint64, n int) []uint64 {
	out := make([]uint64, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, first+uint64(i))
	}
	return out
}
