// If you are AI: This file black-box tests HTTP-FLV playback: a real
// ffmpeg encoder publishes over RTMP, and an http.Get against the
// httpflv endpoint must see an FLV header followed by tag data.

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
)

func TestHTTPFLVPlayback(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping HTTP-FLV test")
	}

	binPath := buildServerBinary(t)
	healthPort := mustFreePort(t)
	httpPort := mustFreePort(t)
	rtmpPort := mustFreePort(t)
	configPath := writePortsConfig(t, healthPort, httpPort, rtmpPort)

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
			t.Skipf("RTMP publish failed, can't exercise HTTP-FLV: %v", err)
		}
	default:
	}

	flvURL := fmt.Sprintf("http://localhost:%d/live/teststream.flv", httpPort)
	resp, err := http.Get(flvURL)
	if err != nil {
		t.Fatalf("GET %s: %v", flvURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	header := make([]byte, 9)
	if _, err := resp.Body.Read(header); err != nil {
		t.Fatalf("reading FLV header: %v", err)
	}
	if !bytes.HasPrefix(header, []byte("FLV")) {
		t.Errorf("missing FLV signature, got %v", header[:3])
	}

	buf := make([]byte, 1024)
	if n, err := resp.Body.Read(buf); err != nil && err.Error() != "EOF" && n == 0 {
		t.Error("no tag data received after the FLV header")
	}

	publish.Process.Signal(syscall.SIGTERM)
	<-publishDone
}
