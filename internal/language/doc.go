// Package language maps subtitle language codes to the human-readable names
// used in container track metadata.
package language
