//go:build !ffmpeg
// +build !ffmpeg

// If you are AI: This is the non-cgo stub Pipeline. Every call
// succeeds trivially since there is no decoder/encoder behind it.

package transcode

// Pipeline represents the input/output pair a transcode task drives
// media through.
type Pipeline struct{}

// NewPipeline returns an inert pipeline in this build.
func NewPipeline(inputURL, outputURL, format string) (*Pipeline, error) {
	return &Pipeline{}, nil
}

// Close is a no-op.
func (p *Pipeline) Close() error {
	return nil
}

// Process is a no-op.
func (p *Pipeline) Process(data []byte) error {
	return nil
}
