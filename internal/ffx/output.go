//go:build !ffmpeg
// +build !ffmpeg

// If you are AI: Non-cgo stub for FFmpeg-backed output: every
// operation fails with ErrFFmpegNotAvailable.

package ffx

// Output is an empty placeholder in this build.
type Output struct{}

// NewOutput always fails in this build.
func NewOutput(url string, format string) (*Output, error) {
	return nil, ErrFFmpegNotAvailable
}

// Close is a no-op in this build.
func (out *Output) Close() error {
	return nil
}

// WritePacket always fails in this build.
func (out *Output) WritePacket(data []byte) error {
	return ErrFFmpegNotAvailable
}
