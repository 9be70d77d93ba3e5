// Package hwaccel detects available GPU acceleration once per process run
// and hands the multiplexer an immutable capability profile.
package hwaccel
