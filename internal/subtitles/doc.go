// Package subtitles resolves a unit's subtitle tracks: the remote subtitle
// the descriptor points at, and whatever the unit's local subtitle folder
// ships. Timed-JSON sources are converted to SubRip; every step is
// skip-if-exists so repeated runs do no redundant work.
package subtitles
