// Package naming derives the deterministic TV-style base filename every
// per-unit output file hangs off of. Format is a pure function: identical
// inputs always produce identical names.
package naming
