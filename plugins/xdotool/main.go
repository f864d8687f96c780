// Command xdotool is an hcs input plugin for X11 desktops. It reads one JSON
// request per line on stdin, drives the pointer and keyboard with the xdotool
// CLI and answers each request with one JSON line on stdout.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ayusman/hcs/internal/plugin"
)

// runFunc runs xdotool with args and returns its standard output.
type runFunc func(args ...string) ([]byte, error)

// buttons maps button names to X11 button numbers.
var buttons = map[string]string{
	"":       "1",
	"left":   "1",
	"middle": "2",
	"right":  "3",
}

// keysyms maps hcs key and modifier names to xdotool keysyms.
var keysyms = map[string]string{
	"left":    "Left",
	"right":   "Right",
	"up":      "Up",
	"down":    "Down",
	"alt":     "alt",
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"cmd":     "super",
	"command": "super",
}

func main() {
	if err := serve(os.Stdin, os.Stdout, xdotool); err != nil {
		fmt.Fprintf(os.Stderr, "xdotool plugin: %v\n", err)
		os.Exit(1)
	}
}

func xdotool(args ...string) ([]byte, error) {
	out, err := exec.Command("xdotool", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("xdotool %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// serve answers requests from r on w until r is closed. Every response echoes
// the request id; stdout carries nothing else.
func serve(r io.Reader, w io.Writer, run runFunc) error {
	scanner := bufio.NewScanner(r)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		var resp plugin.Response
		var req plugin.Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp = plugin.Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
		} else {
			resp = handle(req, run)
		}
		resp.ID = req.ID

		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func handle(req plugin.Request, run runFunc) plugin.Response {
	var (
		resp plugin.Response
		err  error
	)

	switch req.Action {
	case plugin.ActionMove:
		_, err = run("mousemove", strconv.Itoa(req.X), strconv.Itoa(req.Y))
	case plugin.ActionClick:
		_, err = run("click", buttons[req.Button])
	case plugin.ActionToggle:
		if req.Down {
			_, err = run("mousedown", buttons[req.Button])
		} else {
			_, err = run("mouseup", buttons[req.Button])
		}
	case plugin.ActionKeyTap:
		if req.Key == "" {
			err = fmt.Errorf("key is required")
			break
		}
		_, err = run("key", keyCombo(req.Key, req.Modifiers))
	case plugin.ActionScreenSize:
		var out []byte
		out, err = run("getdisplaygeometry")
		if err == nil {
			resp.Width, resp.Height, err = parseGeometry(out)
		}
	default:
		err = fmt.Errorf("unknown action: %s", req.Action)
	}

	if err != nil {
		return plugin.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)}
	}
	resp.Success = true
	return resp
}

// keyCombo renders a key and its modifiers as an xdotool chord such as "alt+Left".
func keyCombo(key string, modifiers []string) string {
	parts := make([]string, 0, len(modifiers)+1)
	for _, m := range modifiers {
		parts = append(parts, keysym(m))
	}
	return strings.Join(append(parts, keysym(key)), "+")
}

func keysym(name string) string {
	if sym, ok := keysyms[strings.ToLower(name)]; ok {
		return sym
	}
	return name
}

// parseGeometry parses the "width height" output of getdisplaygeometry.
func parseGeometry(out []byte) (int, int, error) {
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected display geometry %q", strings.TrimSpace(string(out)))
	}
	w, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("display width: %w", err)
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("display height: %w", err)
	}
	return w, h, nil
}
