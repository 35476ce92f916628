//go:build ffmpeg
// +build ffmpeg

// If you are AI: This file holds the ffmpeg-tagged Input. It records a
// source URL only; no demux context is opened and ReadPacket always
// returns an error.

package ffx

import "errors"

// Input records the URL of one media source; it holds no demux context.
type Input struct {
	url string
	// TODO: hold the *C.AVFormatContext once the cgo bindings land.
}

// NewInput returns an Input for url once Init has been called; it does
// not open or probe the source.
func NewInput(url string) (*Input, error) {
	if !initialized {
		return nil, ErrFFmpegInitFailed
	}
	// TODO: avformat_open_input + avformat_find_stream_info, with
	// cleanup of the partially-opened context on either failing.
	return &Input{url: url}, nil
}

// Close has nothing to release and returns nil. Safe to call on a nil
// receiver.
func (in *Input) Close() error {
	if in == nil {
		return nil
	}
	// TODO: avformat_close_input.
	return nil
}

// ReadPacket always returns an error; this build demuxes nothing.
func (in *Input) ReadPacket() ([]byte, error) {
	if in == nil {
		return nil, errors.New("ffx: read on nil input")
	}
	// TODO: av_read_frame into an AVPacket, copy into a Go slice, free
	// the AVPacket.
	return nil, errors.New("ffx: ReadPacket not implemented")
}
