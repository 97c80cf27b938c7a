// Package checks holds the semantic checks run over institution forests.
//
// Every check is independent: it registers its own visitor actions, keeps its
// own accumulators, and only reads the shared tree. Most checks collect
// declarations and uses during the walk and compare them in Finalize, so they
// do not depend on the order in which siblings are visited.
//
// Diagnostics are scoped by owning institution. A rule inside a bridge that
// affects a sink institution is attributed to that sink.
package checks
