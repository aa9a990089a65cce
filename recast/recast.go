// Package recast rewrites decompiled compilation units and gathers usage
// statistics over them.
package recast

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/recast/internal/props"
	"github.com/gnolang/recast/internal/rewrite"
	"github.com/gnolang/recast/internal/stats"
	"github.com/gnolang/recast/internal/syntax"
	tt "github.com/gnolang/recast/internal/types"
)

// Unit is one compilation unit: a named tree.
type Unit struct {
	Name string
	Tree *syntax.Tree
}

// Result is the outcome of rewriting one unit.
type Result struct {
	Unit        string
	Source      string
	Diagnostics []tt.Diagnostic
	// Err is set when the pass aborted on an internal invariant. Source
	// is empty then and the tree may be partially rewritten.
	Err error
}

// Stats holds the shared counters of both collectors.
type Stats struct {
	Constants   stats.Shared
	Invocations stats.Shared
}

// Processor rewrites and analyzes units according to a Config. It is safe
// for concurrent use; every unit gets its own engine.
type Processor struct {
	logger *zap.Logger
	config Config
	props  *props.Table
}

// New loads the property table named by config and returns a Processor.
func New(logger *zap.Logger, config Config) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := props.Empty()
	if config.Properties != "" {
		var err error
		if table, err = props.Load(config.Properties); err != nil {
			return nil, err
		}
		logger.Debug("loaded property table",
			zap.String("path", config.Properties), zap.Int("entries", table.Len()))
	}
	return &Processor{logger: logger, config: config, props: table}, nil
}

// Properties returns the eliminated-property table in use.
func (p *Processor) Properties() *props.Table { return p.props }

func (p *Processor) engine() *rewrite.Engine {
	return rewrite.NewEngine(p.logger, p.props,
		rewrite.WithSettings(p.config.Settings),
		rewrite.WithRules(p.config.Rules),
	)
}

// Rewrite rewrites u in place and renders the result.
func (p *Processor) Rewrite(u Unit) Result {
	diags, err := p.engine().Run(u.Name, u.Tree)
	if err != nil {
		p.logger.Error("Error rewriting unit", zap.String("unit", u.Name), zap.Error(err))
		return Result{Unit: u.Name, Diagnostics: diags, Err: err}
	}
	return Result{
		Unit:        u.Name,
		Source:      u.Tree.String(u.Tree.Root()),
		Diagnostics: diags,
	}
}

// RewriteUnits rewrites units in parallel. Results are in input order.
// Only cancellation of ctx makes it fail; per-unit failures are reported
// in Result.Err.
func (p *Processor) RewriteUnits(ctx context.Context, units []Unit) ([]Result, error) {
	results := make([]Result, len(units))
	err := forEach(ctx, units, func(i int, u Unit) {
		results[i] = p.Rewrite(u)
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Collect runs both collectors over u and merges their counts into s.
func (p *Processor) Collect(u Unit, s *Stats) {
	var opts []stats.ConstantOption
	if p.config.Stats.FreeText {
		opts = append(opts, stats.WithFreeText())
	}
	constants := stats.NewConstantCollector(opts...)
	constants.Run(u.Tree, u.Tree.Root())
	constants.Merge(&s.Constants)

	invocations := stats.NewInvocationCollector()
	invocations.Run(u.Tree, u.Tree.Root())
	invocations.Merge(&s.Invocations)
}

// CollectUnits runs Collect over units in parallel.
func (p *Processor) CollectUnits(ctx context.Context, units []Unit, s *Stats) error {
	return forEach(ctx, units, func(_ int, u Unit) { p.Collect(u, s) })
}

func forEach(ctx context.Context, units []Unit, fn func(int, Unit)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, u := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("processing units: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("processing units: %w", err)
	}
	return nil
}
