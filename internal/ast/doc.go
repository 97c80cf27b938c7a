// Package ast defines the syntax tree for institution and bridge specifications.
//
// The tree is a closed sum type: every node implements Node, and Node carries
// an unexported marker method so only this package can add variants. Each
// variant reports a Kind, and kinds form a small hierarchy (Bridge is an
// Institution, every rule kind is a Rule) that the visitor uses to dispatch
// actions registered on a supertype to all of its subtypes.
//
// Nodes are built once by a front end (see internal/compiler) and are treated
// as immutable afterwards. Checkers read them; nothing in this module mutates a
// tree after construction.
//
// Signatures are the identity used to match declarations with uses:
//
//	has(Person, Item)   -> has/2
//	borrow(P, I)        -> borrow/2
//	open                -> open/0
//
// Argument names never take part in a signature. Equivalent compares whole
// terms up to a consistent renaming of variables.
package ast
