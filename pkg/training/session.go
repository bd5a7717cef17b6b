// Package training drives tabular Q-learning over a road graph: it runs the
// episode loop, decays exploration, and extracts the greedy route.
package training

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-qroute/pkg/agent"
	"github.com/dd0wney/cluso-qroute/pkg/algorithms"
	"github.com/dd0wney/cluso-qroute/pkg/environment"
	"github.com/dd0wney/cluso-qroute/pkg/logging"
	"github.com/dd0wney/cluso-qroute/pkg/metrics"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
	"github.com/dd0wney/cluso-qroute/pkg/rollout"
	"github.com/dd0wney/cluso-qroute/pkg/traffic"
)

// Fixed second PCG words; the seed picks the sequence within each stream
const (
	pcgStream     = 0x9e3779b97f4a7c15
	trafficStream = 0xd1b54a32d192ed03
)

// NewRand returns the generator a run with this seed uses
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// NewTrafficRand returns the generator that draws synthetic traffic for this
// seed. It is independent of NewRand, so drawing traffic never shifts the
// stream a session trains on.
func NewTrafficRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, trafficStream))
}

// EpisodeStats summarizes one finished training episode
type EpisodeStats struct {
	Episode     int
	Steps       int
	Return      float64
	ReachedGoal bool
	// Epsilon is the exploration rate the episode ran with
	Epsilon float64
}

// Observer receives the stats of each episode as soon as it ends
type Observer func(EpisodeStats)

// Result is what a completed run produced
type Result struct {
	RunID        string
	Path         rollout.Path
	ReachedGoal  bool
	Cost         float64
	Episodes     int
	GoalEpisodes int
	Epsilon      float64
	Duration     time.Duration
	Stats        []EpisodeStats
}

// Session owns every piece of state of one training run
type Session struct {
	mu sync.Mutex

	runID    string
	cfg      Config
	graph    *roadgraph.Graph
	costs    environment.CostFunc
	rng      *rand.Rand
	env      *environment.Environment
	agent    *agent.QAgent
	logger   logging.Logger
	metrics  *metrics.Registry
	observer Observer

	stats  []EpisodeStats
	result *Result
}

// Option customizes a Session
type Option func(*Session)

// WithLogger sets the logger; the default is logging.DefaultLogger()
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records into r instead of a private registry
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Session) { s.metrics = r }
}

// WithObserver registers a per-episode callback
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithRunID overrides the generated run identifier
func WithRunID(id string) Option {
	return func(s *Session) { s.runID = id }
}

// NewSession validates its inputs and builds the environment and agent.
// A nil costs table charges traffic.DefaultCost on every edge.
func NewSession(g *roadgraph.Graph, costs environment.CostFunc, start, goal roadgraph.NodeID, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateEndpoints(g, start, goal); err != nil {
		return nil, err
	}
	if costs == nil {
		costs = traffic.NewTable()
	}

	s := &Session{
		cfg:   cfg,
		graph: g,
		costs: costs,
		rng:   NewRand(cfg.Seed),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	s.logger = logging.OrDefault(s.logger).With(logging.Component("training"), logging.RunID(s.runID))

	env, err := environment.New(g, costs, start, goal, cfg.EnvironmentOptions(), s.rng)
	if err != nil {
		return nil, err
	}
	s.env = env
	s.agent = agent.New(env.ObservationSpace(), env.ActionSpace(), cfg.AgentOptions(), s.rng)

	s.metrics.SetProblemSize(g.NodeCount(), g.EdgeCount(), env.ObservationSpace(), env.ActionSpace())
	if !algorithms.Reachable(g, start, goal) {
		s.logger.Warn("goal is not reachable from start, no episode can succeed",
			logging.Node(uint64(start)), logging.Uint64("goal", uint64(goal)))
	}
	return s, nil
}

// Train runs Config.Episodes episodes and then extracts the greedy route.
// Cancellation is checked between episodes. A dead end aborts the run with an
// error matching environment.ErrNoLegalMove.
func (s *Session) Train(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	timer := logging.StartTimer(s.logger, "training finished",
		logging.Node(uint64(s.env.Start())), logging.Uint64("goal", uint64(s.env.Goal())))
	s.logger.Info("training started",
		logging.Int("episodes", s.cfg.Episodes),
		logging.Int("states", s.agent.States()),
		logging.Int("actions", s.agent.Actions()),
		logging.Uint64("seed", s.cfg.Seed))

	s.stats = make([]EpisodeStats, 0, s.cfg.Episodes)
	goals := 0
	for ep := 0; ep < s.cfg.Episodes; ep++ {
		if err := ctx.Err(); err != nil {
			s.metrics.RecordTrainingRun(metrics.StatusCancelled, time.Since(started))
			s.logger.Warn("training cancelled", logging.Episode(ep), logging.Error(err))
			return nil, fmt.Errorf("training cancelled after %d episodes: %w", ep, err)
		}

		stats, err := s.runEpisode(ep)
		if err != nil {
			if environment.IsNoLegalMove(err) {
				s.metrics.RecordNoLegalMove()
			}
			s.metrics.RecordTrainingRun(metrics.StatusFailed, time.Since(started))
			timer.EndError(err)
			return nil, err
		}

		s.stats = append(s.stats, stats)
		if stats.ReachedGoal {
			goals++
		}
		s.metrics.RecordEpisode(stats.Steps, stats.Return, stats.ReachedGoal, stats.Epsilon)
		if s.observer != nil {
			s.observer(stats)
		}
		if s.cfg.LogEvery > 0 && (ep+1)%s.cfg.LogEvery == 0 {
			s.logger.Info("training progress",
				logging.Episode(ep+1),
				logging.Steps(stats.Steps),
				logging.Reward(stats.Return),
				logging.Epsilon(s.agent.Epsilon()),
				logging.Int("goal_episodes", goals))
		}
	}

	path, err := rollout.GreedyPath(s.agent, s.env)
	if err != nil {
		if environment.IsNoLegalMove(err) {
			s.metrics.RecordNoLegalMove()
		}
		s.metrics.RecordTrainingRun(metrics.StatusFailed, time.Since(started))
		timer.EndError(err)
		return nil, err
	}

	res := &Result{
		RunID:        s.runID,
		Path:         path,
		ReachedGoal:  path.Reaches(s.env.Goal()),
		Cost:         path.Cost(s.costs),
		Episodes:     len(s.stats),
		GoalEpisodes: goals,
		Epsilon:      s.agent.Epsilon(),
		Duration:     time.Since(started),
		Stats:        s.stats,
	}
	s.result = res

	s.metrics.RecordRollout(path.Hops(), res.Cost, res.ReachedGoal)
	s.metrics.RecordTrainingRun(metrics.StatusCompleted, res.Duration)
	timer.End(
		logging.Path(path.String()),
		logging.Bool("reached_goal", res.ReachedGoal),
		logging.Int("goal_episodes", goals))
	return res, nil
}

// runEpisode plays one episode with exploration and decays epsilon afterwards
func (s *Session) runEpisode(ep int) (EpisodeStats, error) {
	stats := EpisodeStats{Episode: ep, Epsilon: s.agent.Epsilon()}

	state := s.env.Reset()
	for {
		action := s.agent.ChooseAction(state)
		res, err := s.env.Step(action)
		if err != nil {
			s.logger.Error("episode aborted",
				logging.Episode(ep),
				logging.State(state),
				logging.Node(uint64(s.env.Current())),
				logging.Steps(s.env.StepCount()),
				logging.Error(err))
			return stats, err
		}

		s.agent.Update(state, action, res.Reward, res.State, res.Done)
		stats.Return += res.Reward
		state = res.State
		if res.Done {
			stats.Steps = s.env.StepCount()
			stats.ReachedGoal = res.Node == s.env.Goal()
			break
		}
	}

	s.agent.DecayExploration()
	s.logger.Debug("episode finished",
		logging.Episode(ep),
		logging.Steps(stats.Steps),
		logging.Reward(stats.Return),
		logging.Epsilon(stats.Epsilon))
	return stats, nil
}

// RunID identifies this run in logs, metrics and snapshots
func (s *Session) RunID() string { return s.runID }

// Config returns the validated configuration
func (s *Session) Config() Config { return s.cfg }

// Agent exposes the learner for export. Do not use it while Train runs.
func (s *Session) Agent() *agent.QAgent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}

// Environment exposes the environment for state/node translation
func (s *Session) Environment() *environment.Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env
}

// Stats returns a copy of the per-episode statistics gathered so far
func (s *Session) Stats() []EpisodeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EpisodeStats, len(s.stats))
	copy(out, s.stats)
	return out
}

// Result returns the last completed result, or nil before Train succeeds
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Metrics returns the registry the session records into
func (s *Session) Metrics() *metrics.Registry { return s.metrics }
