// Package plugin runs external input plugins that drive the pointer and keyboard
// on platforms or setups the built-in backend does not cover.
package plugin

import "slices"

// Actions understood by input plugins.
const (
	ActionMove       = "move"
	ActionClick      = "click"
	ActionToggle     = "toggle"
	ActionKeyTap     = "key_tap"
	ActionScreenSize = "screen_size"
)

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Args        []string `json:"args,omitempty"`
	Actions     []string `json:"actions"`
}

// Request is one line sent to a plugin. Only the fields relevant to Action are
// set. ID is assigned by the session and must be echoed in the Response.
type Request struct {
	Action    string   `json:"action"`
	X         int      `json:"x,omitempty"`
	Y         int      `json:"y,omitempty"`
	Button    string   `json:"button,omitempty"`
	Down      bool     `json:"down,omitempty"`
	Key       string   `json:"key,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	ID        uint64   `json:"id"`
}

// Response is one line answered by a plugin. ID is the ID of the answered request.
type Response struct {
	ID      uint64 `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the plugin declares the given action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
