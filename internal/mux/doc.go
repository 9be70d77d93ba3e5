// Package mux assembles the final MKV container with ffmpeg: one video
// stream, one audio stream, and every resolved subtitle track, all stream
// copied. Hardware-accelerated attempts fall back to a plain copy.
package mux
