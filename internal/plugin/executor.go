package plugin

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// ErrSessionClosed is returned by Call after the plugin process has exited or been closed.
var ErrSessionClosed = errors.New("plugin session closed")

// Session is a running plugin process. Requests are written to its stdin as one
// JSON object per line and each is answered by one JSON line on stdout carrying
// the request's id. Other stdout lines, such as stray output or the late answer
// to a timed out request, are skipped.
type Session struct {
	plugin  *Plugin
	timeout time.Duration
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	lines   chan []byte
	stderr  bytes.Buffer
	mu      sync.Mutex
	closed  bool
	nextID  uint64
}

// Start launches the plugin executable in its own directory. Every call on the
// returned Session fails if the plugin takes longer than timeout to answer.
func Start(plugin *Plugin, timeout time.Duration) (*Session, error) {
	cmd := exec.Command(plugin.Executable, plugin.Manifest.Args...)
	cmd.Dir = plugin.Path

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	s := &Session{
		plugin:  plugin,
		timeout: timeout,
		cmd:     cmd,
		stdin:   stdin,
		lines:   make(chan []byte),
	}
	cmd.Stderr = &lockedWriter{w: &s.stderr, mu: &s.mu}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start plugin %s: %w", plugin.Manifest.Name, err)
	}

	go s.readLines(stdout)
	return s, nil
}

// readLines forwards stdout lines until the process closes its output.
func (s *Session) readLines(r io.Reader) {
	defer close(s.lines)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.lines <- bytes.Clone(scanner.Bytes())
	}
}

// Call sends req and waits for the plugin's answer. A response with Success
// false is returned as an error. Call sets req.ID.
func (s *Session) Call(req *Request) (*Response, error) {
	s.mu.Lock()
	closed := s.closed
	s.nextID++
	req.ID = s.nextID
	s.mu.Unlock()
	if closed {
		return nil, ErrSessionClosed
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqJSON = append(reqJSON, '\n')

	if _, err := s.stdin.Write(reqJSON); err != nil {
		return nil, fmt.Errorf("write request: %w%s", err, s.stderrSuffix())
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var skipped []byte
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return nil, fmt.Errorf("%w: plugin exited%s", ErrSessionClosed, s.stderrSuffix())
			}

			var response Response
			if err := json.Unmarshal(line, &response); err != nil || response.ID != req.ID {
				skipped = line
				continue
			}
			if !response.Success {
				return &response, fmt.Errorf("plugin %s: %s failed: %s", s.plugin.Manifest.Name, req.Action, response.Error)
			}
			return &response, nil

		case <-timer.C:
			s.Close()
			err := fmt.Errorf("plugin %s timed out after %s waiting for response %d", s.plugin.Manifest.Name, s.timeout, req.ID)
			if skipped != nil {
				err = fmt.Errorf("%w, last unmatched stdout: %s", err, skipped)
			}
			return nil, err
		}
	}
}

// Close stops the plugin. Closing stdin asks it to exit; it is killed if it
// has not exited within the session timeout.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stdin.Close()

	done := make(chan error, 1)
	go func() {
		// Drain so the reader goroutine can finish.
		for range s.lines {
		}
		done <- s.cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(s.timeout):
		s.cmd.Process.Kill()
		return <-done
	}
}

func (s *Session) stderrSuffix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stderr.Len() == 0 {
		return ""
	}
	return ", stderr: " + s.stderr.String()
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
