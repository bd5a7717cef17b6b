// Package snapshot persists a trained run: the value table, the learned route
// and the configuration that produced them.
//
// File layout (little endian):
//
//	magic    uint32
//	version  uint16
//	reserved uint16
//	length   uint32  snappy payload size
//	checksum uint32  CRC32 (IEEE) of the payload
//	payload  snappy-compressed JSON
package snapshot

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dd0wney/cluso-qroute/pkg/agent"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
	"github.com/dd0wney/cluso-qroute/pkg/training"
)

const (
	Magic   uint32 = 0x51525431 // "QRT1"
	Version uint16 = 1
)

var (
	// ErrSnapshotCorrupt is returned for a file that cannot be decoded
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
	// ErrNotTrained is returned when snapshotting a session with no result
	ErrNotTrained = errors.New("session has not finished training")
	// ErrShapeMismatch is returned when a table does not fit the target agent
	ErrShapeMismatch = errors.New("value table shape mismatch")
)

type header struct {
	Magic    uint32
	Version  uint16
	Reserved uint16
	Length   uint32
	Checksum uint32
}

// Snapshot is the persisted form of a finished run
type Snapshot struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	Start roadgraph.NodeID `json:"start" yaml:"start"`
	Goal  roadgraph.NodeID `json:"goal" yaml:"goal"`
	// Nodes lists graph nodes in state-index order
	Nodes   []roadgraph.NodeID `json:"nodes" yaml:"-"`
	Actions int                `json:"actions" yaml:"actions"`
	Table   [][]float64        `json:"table" yaml:"-"`
	Decays  int                `json:"decays" yaml:"decays"`
	Epsilon float64            `json:"epsilon" yaml:"epsilon"`

	Path         []roadgraph.NodeID `json:"path" yaml:"path"`
	ReachedGoal  bool               `json:"reached_goal" yaml:"reached_goal"`
	Cost         float64            `json:"cost" yaml:"cost"`
	Episodes     int                `json:"episodes" yaml:"episodes"`
	GoalEpisodes int                `json:"goal_episodes" yaml:"goal_episodes"`

	Config training.Config `json:"config" yaml:"config"`
}

// FromSession captures a session after a successful Train
func FromSession(s *training.Session) (*Snapshot, error) {
	res := s.Result()
	if res == nil {
		return nil, ErrNotTrained
	}
	env := s.Environment()
	ag := s.Agent()

	nodes := make([]roadgraph.NodeID, env.ObservationSpace())
	for i := range nodes {
		nodes[i], _ = env.NodeAt(i)
	}

	return &Snapshot{
		RunID:        res.RunID,
		CreatedAt:    time.Now().UTC(),
		Start:        env.Start(),
		Goal:         env.Goal(),
		Nodes:        nodes,
		Actions:      ag.Actions(),
		Table:        ag.Table(),
		Decays:       ag.Decays(),
		Epsilon:      ag.Epsilon(),
		Path:         res.Path,
		ReachedGoal:  res.ReachedGoal,
		Cost:         res.Cost,
		Episodes:     res.Episodes,
		GoalEpisodes: res.GoalEpisodes,
		Config:       s.Config(),
	}, nil
}

// Agent rebuilds a greedy-ready agent from the stored table
func (s *Snapshot) Agent(rng *rand.Rand) (*agent.QAgent, error) {
	a := agent.New(len(s.Nodes), s.Actions, s.Config.AgentOptions(), rng)
	if !a.Load(s.Table, s.Decays) {
		return nil, fmt.Errorf("%w: table has %d rows, want %d×%d", ErrShapeMismatch, len(s.Table), len(s.Nodes), s.Actions)
	}
	return a, nil
}

// validate checks internal consistency after decoding
func (s *Snapshot) validate() error {
	if len(s.Table) != len(s.Nodes) {
		return fmt.Errorf("%w: %d table rows for %d nodes", ErrSnapshotCorrupt, len(s.Table), len(s.Nodes))
	}
	for i, row := range s.Table {
		if len(row) != s.Actions {
			return fmt.Errorf("%w: row %d has %d actions, want %d", ErrSnapshotCorrupt, i, len(row), s.Actions)
		}
	}
	return nil
}
