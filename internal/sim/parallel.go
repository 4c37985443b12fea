package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/psbody/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Member is one independent body of an ensemble with the host it syncs to.
// A nil Host runs the body on its own state.
type Member struct {
	Sim  *Simulator
	Host dynamo.Host
	// Config overrides the ensemble-wide run config when non-nil.
	Config *Config
}

// Ensemble runs independent simulators in parallel. Members must not share
// a simulator or host.
type Ensemble struct {
	members []Member
}

func NewEnsemble(members ...Member) *Ensemble {
	return &Ensemble{members: members}
}

func (e *Ensemble) Add(s *Simulator, host dynamo.Host) {
	e.members = append(e.members, Member{Sim: s, Host: host})
}

func (e *Ensemble) Len() int { return len(e.members) }

// Run steps every member for cfg.Duration. The first failure cancels the
// others; results of members that ran are returned either way.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.members))

	g, ctx := errgroup.WithContext(ctx)
	for i, m := range e.members {
		g.Go(func() error {
			r, err := m.Sim.Run(ctx, m.Host, m.config(cfg))
			results[i] = r
			return err
		})
	}

	err := g.Wait()
	return results, err
}

// RunEach runs every member to completion, at most GOMAXPROCS at a time, and
// reports each member's error separately. One failing member does not stop
// the others.
func (e *Ensemble) RunEach(ctx context.Context, cfg Config) ([]*Result, []error) {
	results := make([]*Result, len(e.members))
	errs := make([]error, len(e.members))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, m := range e.members {
		g.Go(func() error {
			results[i], errs[i] = m.Sim.Run(ctx, m.Host, m.config(cfg))
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}

func (m Member) config(shared Config) Config {
	if m.Config != nil {
		return *m.Config
	}
	return shared
}
