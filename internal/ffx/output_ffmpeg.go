//go:build ffmpeg
// +build ffmpeg

// If you are AI: This file holds the ffmpeg-tagged Output. It records a
// destination URL and container format only; no mux context is opened
// and WritePacket always returns an error.

package ffx

import "errors"

// Output records the URL and format of one media sink; it holds no mux
// context.
type Output struct {
	url    string
	format string
	// TODO: hold the *C.AVFormatContext once the cgo bindings land.
}

// NewOutput returns an Output for url and format once Init has been
// called; it does not open the destination or write a container header.
func NewOutput(url string, format string) (*Output, error) {
	if !initialized {
		return nil, ErrFFmpegInitFailed
	}
	// TODO: avformat_alloc_output_context2, set the format/URL, open
	// the underlying AVIOContext, write the container header.
	return &Output{url: url, format: format}, nil
}

// Close has nothing to flush or release and returns nil. Safe to call
// on a nil receiver.
func (out *Output) Close() error {
	if out == nil {
		return nil
	}
	// TODO: av_write_trailer, then close the output file/stream.
	return nil
}

// WritePacket always returns an error; this build muxes nothing.
func (out *Output) WritePacket(data []byte) error {
	if out == nil {
		return errors.New("ffx: write on nil output")
	}
	// TODO: build an AVPacket from data and av_interleaved_write_frame.
	return errors.New("ffx: WritePacket not implemented")
}
