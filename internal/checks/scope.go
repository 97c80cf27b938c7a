package checks

import (
	"sort"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/visitor"
)

// sigKey identifies a signature within one institution.
type sigKey struct {
	owner string
	sig   ast.Signature
}

// owner returns the name of the institution enclosing the current node.
func owner(v *visitor.Visitor) string {
	in, ok := v.Institution()
	if !ok {
		return ""
	}
	return in.Name
}

// enclosingBridge returns the bridge enclosing the current node, if any.
func enclosingBridge(v *visitor.Visitor) (*ast.Bridge, bool) {
	n, ok := v.Nearest(ast.KindBridge)
	if !ok {
		return nil, false
	}
	b, ok := n.(*ast.Bridge)
	return b, ok
}

// declared is an ordered signature -> node index.
type declared[T ast.Node] struct {
	order []sigKey
	nodes map[sigKey]T
}

func newDeclared[T ast.Node]() *declared[T] {
	return &declared[T]{nodes: make(map[sigKey]T)}
}

// add records n under k unless k is present. It reports whether n was added.
func (d *declared[T]) add(k sigKey, n T) bool {
	if _, ok := d.nodes[k]; ok {
		return false
	}
	d.order = append(d.order, k)
	d.nodes[k] = n
	return true
}

func (d *declared[T]) get(k sigKey) (T, bool) {
	n, ok := d.nodes[k]
	return n, ok
}

// usedSet records which signatures were seen per institution.
type usedSet map[sigKey]bool

func (u usedSet) mark(owner string, sig ast.Signature) {
	u[sigKey{owner: owner, sig: sig}] = true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
