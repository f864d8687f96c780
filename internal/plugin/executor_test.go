package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// replyFunc is prepended to every script plugin. reply echoes the id of the
// request in $line followed by the given response fields.
const replyFunc = `reply() {
  id=${line##*'"id":'}
  id=${id%?}
  printf '{"id":%s,%s}\n' "$id" "$1"
}
`

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := filepath.Join(tmpDir, "plugin.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+replyFunc+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       "test-plugin",
			Version:    "1.0.0",
			Executable: "plugin.sh",
			Actions:    []string{ActionMove, ActionClick, ActionScreenSize},
		},
		Path:       tmpDir,
		Executable: scriptPath,
	}
}

func startSession(t *testing.T, plugin *Plugin, timeout time.Duration) *Session {
	t.Helper()

	s, err := Start(plugin, timeout)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSession_Call(t *testing.T) {
	plugin := scriptPlugin(t, `
while IFS= read -r line; do
  reply '"success":true,"width":1920,"height":1080'
done
`)
	s := startSession(t, plugin, 5*time.Second)

	response, err := s.Call(&Request{Action: ActionScreenSize})
	if err != nil {
		t.Fatalf("Call() failed: %v", err)
	}
	if !response.Success {
		t.Errorf("expected success=true, got false")
	}
	if response.Width != 1920 || response.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", response.Width, response.Height)
	}
}

func TestSession_ProcessPersistsAcrossCalls(t *testing.T) {
	plugin := scriptPlugin(t, `
n=0
while IFS= read -r line; do
  n=$((n+1))
  reply "\"success\":true,\"width\":$n"
done
`)
	s := startSession(t, plugin, 5*time.Second)

	for want := 1; want <= 3; want++ {
		response, err := s.Call(&Request{Action: ActionMove, X: want, Y: want})
		if err != nil {
			t.Fatalf("Call() %d failed: %v", want, err)
		}
		if response.Width != want {
			t.Errorf("expected call counter %d, got %d", want, response.Width)
		}
	}
}

func TestSession_ReadsRequest(t *testing.T) {
	plugin := scriptPlugin(t, `
while IFS= read -r line; do
  case "$line" in
    *'"action":"click"'*'"button":"left"'*) reply '"success":true' ;;
    *) reply '"success":false,"error":"unsupported"' ;;
  esac
done
`)
	s := startSession(t, plugin, 5*time.Second)

	if _, err := s.Call(&Request{Action: ActionClick, Button: "left"}); err != nil {
		t.Fatalf("Call(click) failed: %v", err)
	}

	response, err := s.Call(&Request{Action: ActionMove, X: 10, Y: 20})
	if err == nil {
		t.Fatal("expected error for a failed response")
	}
	if response == nil || response.Error != "unsupported" {
		t.Errorf("expected the failed response to be returned, got %+v", response)
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error to carry the plugin message, got %v", err)
	}
}

func TestSession_SkipsUnmatchedLines(t *testing.T) {
	plugin := scriptPlugin(t, `
while IFS= read -r line; do
  echo 'starting up'
  echo '{"id":999,"success":false,"error":"stale"}'
  reply '"success":true,"width":7'
done
`)
	s := startSession(t, plugin, 5*time.Second)

	for i := 1; i <= 3; i++ {
		response, err := s.Call(&Request{Action: ActionMove, X: i})
		if err != nil {
			t.Fatalf("Call() %d failed: %v", i, err)
		}
		if response.ID != uint64(i) || response.Width != 7 {
			t.Errorf("Call() %d = %+v, want the answer to request %d", i, response, i)
		}
	}
}

func TestSession_LateAnswerIsNotReused(t *testing.T) {
	// The first request is answered twice; the duplicate must not be taken
	// as the answer to the second request.
	plugin := scriptPlugin(t, `
n=0
while IFS= read -r line; do
  n=$((n+1))
  reply "\"success\":true,\"width\":$n"
  if [ $n -eq 1 ]; then reply "\"success\":true,\"width\":100"; fi
done
`)
	s := startSession(t, plugin, 5*time.Second)

	if _, err := s.Call(&Request{Action: ActionMove}); err != nil {
		t.Fatalf("first Call() failed: %v", err)
	}
	response, err := s.Call(&Request{Action: ActionMove})
	if err != nil {
		t.Fatalf("second Call() failed: %v", err)
	}
	if response.Width != 2 {
		t.Errorf("expected the answer to request 2, got width %d", response.Width)
	}
}

func TestSession_InvalidJSON(t *testing.T) {
	plugin := scriptPlugin(t, `
while IFS= read -r line; do
  echo 'not json'
done
`)
	s := startSession(t, plugin, 200*time.Millisecond)

	_, err := s.Call(&Request{Action: ActionClick})
	if err == nil {
		t.Fatal("expected error when the plugin never answers with JSON")
	}
	if !strings.Contains(err.Error(), "timed out") || !strings.Contains(err.Error(), "not json") {
		t.Errorf("expected a timeout naming the unmatched output, got %v", err)
	}
}

func TestSession_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, `
read -r line
sleep 1
`)
	s := startSession(t, plugin, 100*time.Millisecond)

	start := time.Now()
	_, err := s.Call(&Request{Action: ActionClick})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}

	if _, err := s.Call(&Request{Action: ActionClick}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after a timeout, got %v", err)
	}
}

func TestSession_PluginExits(t *testing.T) {
	plugin := scriptPlugin(t, `
read -r line
echo "fatal: no display" >&2
exit 1
`)
	s := startSession(t, plugin, 5*time.Second)

	_, err := s.Call(&Request{Action: ActionClick})
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	plugin := scriptPlugin(t, `
while IFS= read -r line; do
  reply '"success":true'
done
`)
	s, err := Start(plugin, 5*time.Second)
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
	if _, err := s.Call(&Request{Action: ActionClick}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestStart_MissingExecutable(t *testing.T) {
	plugin := &Plugin{
		Manifest:   Manifest{Name: "missing", Executable: "nope"},
		Path:       t.TempDir(),
		Executable: "/path/that/does/not/exist/nope",
	}

	if _, err := Start(plugin, time.Second); err == nil {
		t.Fatal("expected error for missing executable")
	}
}
