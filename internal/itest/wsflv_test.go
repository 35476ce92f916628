// If you are AI: This file black-box tests WebSocket-FLV playback:
// a real ffmpeg encoder publishes over RTMP, and a WebSocket client
// against the wsflv endpoint must see an FLV header frame followed by
// tag frames.

package itest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWSFLVPlayback(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping WebSocket-FLV test")
	}

	binPath := buildServerBinary(t)
	httpPort := mustFreePort(t)
	rtmpPort := mustFreePort(t)
	configPath := writePortsConfig(t, 8080, httpPort, rtmpPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, binPath, "--config", configPath)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting server: %v", err)
	}
	defer func() {
		cmd.Process.Signal(syscall.SIGINT)
		cmd.Wait()
	}()

	if err := WaitForHealth(httpPort, 5*time.Second); err != nil {
		t.Fatalf("waiting for health endpoint: %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	testVideo := t.TempDir() + "/test.mp4"
	gen := exec.Command("ffmpeg", "-f", "lavfi",
		"-i", "testsrc=duration=2:size=320x240:rate=1",
		"-c:v", "libx264", "-preset", "ultrafast", "-t", "2", "-y", testVideo)
	gen.Stderr = os.Stderr
	if err := gen.Run(); err != nil {
		t.Skipf("ffmpeg cannot synthesize a test clip: %v", err)
	}

	rtmpURL := fmt.Sprintf("rtmp://localhost:%d/live/teststream", rtmpPort)
	publish := exec.Command("ffmpeg", "-re", "-i", testVideo, "-c", "copy", "-f", "flv", rtmpURL)
	publish.Stderr = os.Stderr

	publishDone := make(chan error, 1)
	go func() { publishDone <- publish.Run() }()

	time.Sleep(2 * time.Second)
	select {
	case err := <-publishDone:
		if err != nil {
			t.Skipf("RTMP publish failed, can't exercise WebSocket-FLV: %v", err)
		}
	default:
	}

	wsURL := fmt.Sprintf("ws://localhost:%d/ws/live/teststream", httpPort)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d, want 101", resp.StatusCode)
	}

	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading header frame: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("header frame type = %d, want binary", msgType)
	}
	if len(data) < 9 || !bytes.HasPrefix(data, []byte("FLV")) {
		t.Errorf("header frame missing FLV signature: %v", data)
	}

	for i := 0; i < 3; i++ {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.BinaryMessage {
			t.Errorf("tag frame %d type = %d, want binary", i, msgType)
		}
		if len(data) == 0 {
			t.Errorf("tag frame %d is empty", i)
		}
	}

	publish.Process.Signal(syscall.SIGTERM)
	<-publishDone
}
