// If you are AI: This file defines StreamKey, the comparable (app, name)
// pair Registry maps to a *Stream.

package bus

import "fmt"

// StreamKey identifies a stream by the RTMP application it was published
// under and the stream name within that application.
type StreamKey struct {
	App  string
	Name string
}

// NewStreamKey builds the key for a given app/name pair.
func NewStreamKey(app, name string) StreamKey {
	return StreamKey{App: app, Name: name}
}

// String renders the key as "app/name", the form used in log lines.
func (k StreamKey) String() string {
	return fmt.Sprintf("%s/%s", k.App, k.Name)
}
