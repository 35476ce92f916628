// If you are AI: This file tests the RTMP → HTTP-FLV → HLS round
// trip: publish live media, capture the server's FLV output to a
// file, then hand that file to ffmpeg to repackage as HLS and check
// the playlist/segments it produces.

package itest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestHLSRoundTrip(t *testing.T) {
	requireTool(t, "ffmpeg")
	requireTool(t, "curl")

	httpPort, _, cmd := startServerWithFFmpegFixture(t, "hlstest")
	defer func() {
		cmd.Process.Signal(syscall.SIGTERM)
		cmd.Wait()
	}()

	flvFile := captureHTTPFLV(t, httpPort, "hlstest")

	hlsDir := filepath.Join(t.TempDir(), "hls")
	os.MkdirAll(hlsDir, 0755)
	hlsPlaylist := filepath.Join(hlsDir, "stream.m3u8")

	pkg := exec.Command("ffmpeg", "-i", flvFile, "-c", "copy",
		"-f", "hls", "-hls_time", "1", "-hls_list_size", "0", "-y", hlsPlaylist)
	if out, err := pkg.CombinedOutput(); err != nil {
		t.Fatalf("HLS packaging failed: %v\n%s", err, out)
	}

	info, err := os.Stat(hlsPlaylist)
	if err != nil {
		t.Fatalf("HLS playlist not found: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("HLS playlist is empty")
	}

	segments, _ := filepath.Glob(filepath.Join(hlsDir, "*.ts"))
	if len(segments) == 0 {
		t.Fatal("no HLS .ts segments produced")
	}
	t.Logf("HLS round-trip OK: playlist=%s segments=%d", hlsPlaylist, len(segments))
}

// requireTool skips the test if name isn't on PATH.
func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available, skipping", name)
	}
}

// startServerWithFFmpegFixture builds and starts the server, waits for
// it to be healthy, then publishes an 8-second synthetic A/V clip to
// it over RTMP under app "live", stream streamName, in the
// background. Keyframes every 15 frames (1s at 15fps) so a fresh
// HTTP-FLV subscriber doesn't wait long for its first one.
func startServerWithFFmpegFixture(t *testing.T, streamName string) (httpPort, rtmpPort int, cmd *exec.Cmd) {
	t.Helper()

	binPath := buildServerBinary(t)
	httpPort = mustFreePort(t)
	rtmpPort = mustFreePort(t)
	configPath := writePortsConfig(t, 8080, httpPort, rtmpPort)

	cmd = exec.Command(binPath, "--config", configPath)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}

	if err := WaitForHealth(httpPort, 5*time.Second); err != nil {
		t.Fatalf("server not ready: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	testVideo := filepath.Join(t.TempDir(), "test.mp4")
	gen := exec.Command("ffmpeg", "-f", "lavfi",
		"-i", "testsrc=duration=8:size=320x240:rate=15",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=8",
		"-c:v", "libx264", "-preset", "ultrafast", "-g", "15",
		"-c:a", "aac", "-b:a", "64k",
		"-t", "8", "-y", testVideo)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot synthesize a test clip: %v\n%s", err, out)
	}

	rtmpURL := fmt.Sprintf("rtmp://localhost:%d/live/%s", rtmpPort, streamName)
	publish := exec.Command("ffmpeg", "-re", "-i", testVideo, "-c", "copy", "-f", "flv", rtmpURL)
	publish.Stderr = os.Stderr
	if err := publish.Start(); err != nil {
		t.Fatalf("starting publisher: %v", err)
	}
	t.Cleanup(func() {
		publish.Process.Signal(syscall.SIGTERM)
		publish.Wait()
	})

	time.Sleep(2 * time.Second)
	return httpPort, rtmpPort, cmd
}

// captureHTTPFLV pulls streamName's HTTP-FLV output to a temp file for
// up to 5 seconds via curl — enough time to land at least one
// keyframe's worth of data — and fails the test if too little came
// through.
func captureHTTPFLV(t *testing.T, httpPort int, streamName string) string {
	t.Helper()

	flvFile := filepath.Join(t.TempDir(), "capture.flv")
	flvURL := fmt.Sprintf("http://localhost:%d/live/%s.flv", httpPort, streamName)
	capture := exec.Command("curl", "-s", "--max-time", "5", "-o", flvFile, flvURL)
	capture.Run() // curl exits non-zero on its own timeout; that's expected

	info, err := os.Stat(flvFile)
	if err != nil || info.Size() < 1024 {
		t.Fatalf("insufficient FLV data captured: size=%d err=%v", statSize(info), err)
	}
	t.Logf("captured %d bytes of FLV data", info.Size())
	return flvFile
}

func statSize(info os.FileInfo) int64 {
	if info == nil {
		return 0
	}
	return info.Size()
}
