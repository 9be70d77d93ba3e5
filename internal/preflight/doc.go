// Package preflight verifies the environment before a processing run:
// directory access, tool availability, and free space on the output volume.
package preflight
