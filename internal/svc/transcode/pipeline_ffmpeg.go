//go:build ffmpeg
// +build ffmpeg

// If you are AI: This is the ffmpeg-tagged Pipeline, wiring an ffx.Input and
// ffx.Output together around a transcode step.

package transcode

import (
	"errors"
	"nonchalant/internal/ffx"
)

// Pipeline couples an FFmpeg input context to an output context for
// one transcode task.
type Pipeline struct {
	input  *ffx.Input
	output *ffx.Output
}

// NewPipeline opens inputURL and outputURL, closing the input again if
// opening the output fails.
func NewPipeline(inputURL, outputURL, format string) (*Pipeline, error) {
	input, err := ffx.NewInput(inputURL)
	if err != nil {
		return nil, err
	}

	output, err := ffx.NewOutput(outputURL, format)
	if err != nil {
		input.Close()
		return nil, err
	}

	return &Pipeline{input: input, output: output}, nil
}

// Close releases both the input and output contexts, returning the
// last error encountered if either failed to close.
func (p *Pipeline) Close() error {
	var err error
	if p.output != nil {
		if e := p.output.Close(); e != nil {
			err = e
		}
	}
	if p.input != nil {
		if e := p.input.Close(); e != nil {
			err = e
		}
	}
	return err
}

// TODO: decode/re-encode data through libavcodec instead of passing it
// through untouched once ffx exposes codec contexts.
func (p *Pipeline) Process(data []byte) error {
	if p == nil {
		return errors.New("pipeline is nil")
	}
	return p.output.WritePacket(data)
}
