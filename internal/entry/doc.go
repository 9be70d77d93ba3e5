// Package entry parses the per-unit entry.json descriptor the downloader
// leaves beside each episode's raw assets. Parsing is tolerant: missing files
// and fields default rather than fail, matching the uneven quality of
// real-world download trees.
package entry
