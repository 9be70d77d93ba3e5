// Package discovery finds episode units in a raw download tree: the
// classifier decides whether a single folder is a unit, the walker applies it
// across the tree with a bounded-depth work list and never descends into a
// folder it has already classified as a unit.
package discovery
