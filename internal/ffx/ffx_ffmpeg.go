//go:build ffmpeg
// +build ffmpeg

// If you are AI: This file is the ffmpeg-tagged build of the ffx
// package. It uses no cgo and links no FFmpeg library: Init only
// records that it was called, and the Input/Output types of this build
// open nothing and carry no media.

package ffx

import "errors"

// ErrFFmpegInitFailed is returned when an ffx operation runs before
// Init has succeeded.
var ErrFFmpegInitFailed = errors.New("FFmpeg initialization failed")

var initialized bool

// Init marks the package initialized; NewInput/NewOutput fail with
// ErrFFmpegInitFailed until it has been called. It sets up no FFmpeg
// state.
// TODO: call av_register_all() and the libavformat network init once
// the cgo bindings are wired in.
func Init() error {
	initialized = true
	return nil
}

// Cleanup clears the flag Init set. Safe to call even if Init was never
// called.
func Cleanup() {
	initialized = false
}

// IsAvailable reports whether Init has been called without a matching
// Cleanup since.
func IsAvailable() bool {
	return initialized
}
