// Package visitor walks a forest of syntax trees once, running every action
// registered for a node's kind and for each of its supertypes before
// descending into the node's children.
//
// Many checkers register into one Visitor so a forest is traversed a single
// time no matter how many checks ride on it. An action that fails (returns an
// error or panics) is logged and recorded; the walk carries on so one faulty
// checker cannot hide findings from the others.
package visitor

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
)

// Action runs against one node during a walk.
type Action func(v *Visitor, n ast.Node) error

// Actions maps a kind to the actions registered for it.
type Actions map[ast.Kind][]Action

// Add appends actions for kind k.
func (a Actions) Add(k ast.Kind, fns ...Action) {
	a[k] = append(a[k], fns...)
}

// ActionFailure records an action that returned an error or panicked.
type ActionFailure struct {
	Kind     ast.Kind
	Pos      ast.Position
	Err      error
	Panicked bool
}

func (f ActionFailure) Error() string {
	if f.Panicked {
		return fmt.Sprintf("action on %s at %s panicked: %v", f.Kind, f.Pos, f.Err)
	}
	return fmt.Sprintf("action on %s at %s failed: %v", f.Kind, f.Pos, f.Err)
}

func (f ActionFailure) Unwrap() error { return f.Err }

// Visitor dispatches registered actions over a pre-order walk.
//
// A Visitor is not safe for concurrent use.
type Visitor struct {
	logger     *slog.Logger
	registered [ast.NumKinds][]Action
	// flat[k] holds registered actions for k and all of its supertypes.
	flat     [ast.NumKinds][]Action
	stale    bool
	stack    []ast.Node
	failures []ActionFailure
}

// New creates a Visitor. A nil logger discards output.
func New(logger *slog.Logger) *Visitor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Visitor{logger: logger}
}

// Register adds a batch of actions. It may be called any number of times
// before Walk.
func (v *Visitor) Register(actions Actions) {
	for k, fns := range actions {
		if !k.Valid() {
			v.logger.Warn("ignoring actions for unknown kind", slog.Int("kind", int(k)))
			continue
		}
		v.registered[k] = append(v.registered[k], fns...)
	}
	v.stale = true
}

// ActionsFor returns the flattened actions for a concrete kind.
func (v *Visitor) ActionsFor(k ast.Kind) []Action {
	if !k.Valid() {
		return nil
	}
	v.flatten()
	return v.flat[k]
}

func (v *Visitor) flatten() {
	if !v.stale {
		return
	}
	for k := ast.Kind(0); k < ast.NumKinds; k++ {
		var fns []Action
		for _, a := range k.Ancestry() {
			fns = append(fns, v.registered[a]...)
		}
		v.flat[k] = fns
	}
	v.stale = false
}

// Walk visits every root and its descendants. Failures from the previous
// walk are discarded.
func (v *Visitor) Walk(roots ...ast.Node) {
	v.flatten()
	v.failures = nil
	v.stack = v.stack[:0]
	for _, root := range roots {
		v.visit(root)
	}
}

func (v *Visitor) visit(n ast.Node) {
	if n == nil {
		return
	}
	k := n.Kind()
	if k.Abstract() {
		panic(fmt.Sprintf("visitor: node %T at %s has abstract kind %s", n, n.Pos(), k))
	}
	if !k.Valid() {
		v.genericVisit(n)
		return
	}

	for _, fn := range v.flat[k] {
		v.run(fn, n)
	}

	v.stack = append(v.stack, n)
	for _, child := range n.Children() {
		v.visit(child)
	}
	v.stack = v.stack[:len(v.stack)-1]
}

func (v *Visitor) genericVisit(n ast.Node) {
	v.logger.Debug("no dispatch entry for node", slog.String("kind", n.Kind().String()), slog.String("pos", n.Pos().String()))
}

func (v *Visitor) run(fn Action, n ast.Node) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			v.record(ActionFailure{Kind: n.Kind(), Pos: n.Pos(), Err: err, Panicked: true})
		}
	}()
	if err := fn(v, n); err != nil {
		v.record(ActionFailure{Kind: n.Kind(), Pos: n.Pos(), Err: err})
	}
}

func (v *Visitor) record(f ActionFailure) {
	v.failures = append(v.failures, f)
	v.logger.Warn("visitor action failed",
		slog.String("kind", f.Kind.String()),
		slog.String("pos", f.Pos.String()),
		slog.Bool("panicked", f.Panicked),
		slog.String("error", f.Err.Error()))
}

// Failures returns the action failures from the last walk.
func (v *Visitor) Failures() []ActionFailure {
	return v.failures
}

// Stack returns the ancestors of the node currently being visited, outermost
// first. The node itself is not included.
func (v *Visitor) Stack() []ast.Node {
	return v.stack
}

// Nearest returns the closest ancestor whose kind is k or a subtype of k.
func (v *Visitor) Nearest(k ast.Kind) (ast.Node, bool) {
	for i := len(v.stack) - 1; i >= 0; i-- {
		if v.stack[i].Kind().Is(k) {
			return v.stack[i], true
		}
	}
	return nil, false
}

// Institution returns the institution (or bridge) enclosing the current node.
func (v *Visitor) Institution() (*ast.Institution, bool) {
	n, ok := v.Nearest(ast.KindInstitution)
	if !ok {
		return nil, false
	}
	return ast.AsInstitution(n)
}
