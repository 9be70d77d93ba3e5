// Package assembler orchestrates the per-unit pipeline that turns a
// downloaded episode folder into a named MKV container, subtitle files, and
// a plain-text sidecar in the output directory. Stages degrade
// independently, so one missing piece never discards the rest of a unit.
package assembler
