// Package services defines the shared error taxonomy used by pipeline stages.
//
// Stage code wraps failures with one of the sentinel markers so the assembler
// can distinguish configuration absence (skip the dependent stages, keep the
// run going) from collaborator failures (record the failure, keep the run
// going) without inspecting error strings.
package services
