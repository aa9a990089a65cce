// Package rewrite turns low-level call sequences recovered by the decoder
// into idiomatic constructs.
//
// The Engine walks a tree depth-first, children before parents, and offers
// every invocation and cast to an ordered rule table. The first rule that
// applies rewrites the node and ends processing for it. A second traversal
// folds "x = x op y" assignments into their compound forms.
//
// An Engine mutates one tree at a time and must not be shared between
// goroutines. Distinct trees may be rewritten concurrently by distinct
// engines sharing the same read-only property table.
package rewrite

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/recast/internal/invariant"
	"github.com/gnolang/recast/internal/pattern"
	"github.com/gnolang/recast/internal/props"
	"github.com/gnolang/recast/internal/syntax"
	tt "github.com/gnolang/recast/internal/types"
)

var (
	// ErrMalformedIdiom reports a recognized idiom whose argument shape is
	// not the expected one. The node is left unchanged.
	ErrMalformedIdiom = errors.New("malformed idiom")

	// ErrInvariant wraps an internal consistency failure. It aborts the
	// pass and signals a defect in the engine, not bad input.
	ErrInvariant = errors.New("rewrite invariant violated")
)

// Rule group names, in firing order. They double as configuration keys.
const (
	GroupUnresolvedFinite   = "unresolved-finite"
	GroupConcatFolding      = "concat-folding"
	GroupIndexedProperty    = "indexed-property"
	GroupRuntimeIdioms      = "runtime-idioms"
	GroupHandleIdioms       = "handle-idioms"
	GroupOperatorIdioms     = "operator-idioms"
	GroupCompoundAssignment = "compound-assignment"
)

// Groups returns every rule group name in firing order.
func Groups() []string {
	return []string{
		GroupUnresolvedFinite,
		GroupConcatFolding,
		GroupIndexedProperty,
		GroupRuntimeIdioms,
		GroupHandleIdioms,
		GroupOperatorIdioms,
		GroupCompoundAssignment,
	}
}

// Settings are the decompiler options that influence rewriting.
type Settings struct {
	// IntroduceIncrementDecrement turns "x += 1" into "x++".
	IntroduceIncrementDecrement bool `yaml:"introduce_increment_decrement"`
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{IntroduceIncrementDecrement: true}
}

// Engine applies the rewrite rules to a tree.
type Engine struct {
	props      *props.Table
	logger     *zap.Logger
	settings   Settings
	severities map[string]tt.Severity

	// per run
	t     *syntax.Tree
	unit  string
	diags []tt.Diagnostic
}

// Option configures an Engine.
type Option func(*Engine)

// WithSettings overrides DefaultSettings.
func WithSettings(s Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithRules sets per-group severities. Unknown group names are ignored;
// SeverityOff disables a group.
func WithRules(rules map[string]tt.ConfigRule) Option {
	return func(e *Engine) {
		for name, r := range rules {
			e.severities[name] = r.Severity
		}
	}
}

// NewEngine creates an engine reading accessor names from table. A nil
// logger discards log output; a nil table behaves as an empty one.
func NewEngine(logger *zap.Logger, table *props.Table, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if table == nil {
		table = props.Empty()
	}
	e := &Engine{
		props:      table,
		logger:     logger,
		settings:   DefaultSettings(),
		severities: make(map[string]tt.Severity),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) enabled(group string) bool {
	s, ok := e.severities[group]
	return !ok || s != tt.SeverityOff
}

func (e *Engine) severity(group string, def tt.Severity) tt.Severity {
	if s, ok := e.severities[group]; ok {
		return s
	}
	return def
}

// Run rewrites t in place and returns the diagnostics emitted on the way.
// unit names the tree in diagnostics and logs. Diagnostics never make Run
// fail; only an internal invariant violation does.
func (e *Engine) Run(unit string, t *syntax.Tree) ([]tt.Diagnostic, error) {
	e.t, e.unit, e.diags = t, unit, nil
	defer func() { e.t = nil }()

	if t.Root() == syntax.NoNode {
		return nil, nil
	}

	var violation error
	func() {
		defer invariant.Recover(&violation)
		e.visit(t.Root())
		if e.enabled(GroupCompoundAssignment) {
			e.foldAssignments(t.Root())
		}
	}()
	if violation != nil {
		e.logger.Error("rewrite aborted", zap.String("unit", unit), zap.Error(violation))
		return e.diags, fmt.Errorf("%s: %w: %w", unit, ErrInvariant, violation)
	}
	return e.diags, nil
}

// visit processes the subtree at id, children first. Nodes that a rewrite
// of a descendant detached are skipped.
func (e *Engine) visit(id syntax.NodeID) {
	for _, c := range e.t.Children(id) {
		e.visit(c)
	}
	if !e.t.InTree(id) {
		return
	}
	switch e.t.Kind(id) {
	case syntax.KindInvocation, syntax.KindCast:
		e.apply(id)
	}
}

// apply fires the first applicable rule on id.
func (e *Engine) apply(id syntax.NodeID) {
	s := e.site(id)
	for _, r := range ruleTable {
		if !e.enabled(r.group) || !r.applies(e, s) {
			continue
		}
		if err := r.rewrite(e, s); err != nil {
			e.malformed(r, s, err)
		}
		return
	}
}

// site is the node a rule is offered, with its call shape unpacked.
type site struct {
	id   syntax.NodeID
	kind syntax.Kind
	sym  *syntax.SymbolRef
	args []syntax.NodeID

	// filled in by the predicate that accepted the site
	idiom  *idiom
	match  pattern.Match
	match2 pattern.Match
}

func (e *Engine) site(id syntax.NodeID) *site {
	s := &site{id: id, kind: e.t.Kind(id)}
	if s.kind == syntax.KindInvocation {
		s.sym = e.t.Symbol(id)
		s.args = e.t.Args(id)
	}
	return s
}

func (s *site) named(names ...string) bool {
	if s.sym == nil {
		return false
	}
	for _, n := range names {
		if s.sym.Name == n {
			return true
		}
	}
	return false
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedIdiom, fmt.Sprintf(format, args...))
}

func (e *Engine) malformed(r rule, s *site, err error) {
	member := ""
	if s.sym != nil {
		member = s.sym.Key()
	}
	e.logger.Error("malformed idiom",
		zap.String("unit", e.unit),
		zap.String("rule", r.name),
		zap.String("member", member),
		zap.Error(err),
	)
	e.report(r.group, tt.SeverityError, s.id, err.Error(), "node left unchanged")
}

func (e *Engine) report(group string, def tt.Severity, id syntax.NodeID, msg, note string) {
	e.diags = append(e.diags, tt.Diagnostic{
		Rule:     group,
		Severity: e.severity(group, def),
		Unit:     e.unit,
		Node:     e.t.String(id),
		Message:  msg,
		Note:     note,
	})
}
