package input

import (
	"fmt"
	"time"

	"github.com/ayusman/hcs/internal/plugin"
)

// PluginBackend forwards input primitives to an external plugin process.
type PluginBackend struct {
	plugin  *plugin.Plugin
	session *plugin.Session
}

// NewPluginBackend starts the named plugin found by the manager.
func NewPluginBackend(manager *plugin.Manager, name string, timeout time.Duration) (*PluginBackend, error) {
	if err := manager.Discover(); err != nil {
		return nil, fmt.Errorf("discover plugins: %w", err)
	}

	p, err := manager.Get(name)
	if err != nil {
		return nil, fmt.Errorf("input plugin %q in %s: %w", name, manager.PluginDir(), err)
	}
	if !p.Supports(plugin.ActionMove) {
		return nil, fmt.Errorf("input plugin %q cannot move the pointer: %w", name, ErrUnsupported)
	}

	session, err := plugin.Start(p, timeout)
	if err != nil {
		return nil, err
	}

	return &PluginBackend{plugin: p, session: session}, nil
}

func (b *PluginBackend) call(req *plugin.Request) (*plugin.Response, error) {
	if !b.plugin.Supports(req.Action) {
		return nil, fmt.Errorf("%s: %w by plugin %s", req.Action, ErrUnsupported, b.plugin.Manifest.Name)
	}
	return b.session.Call(req)
}

func (b *PluginBackend) Move(x, y int) error {
	_, err := b.call(&plugin.Request{Action: plugin.ActionMove, X: x, Y: y})
	return err
}

func (b *PluginBackend) Click() error {
	_, err := b.call(&plugin.Request{Action: plugin.ActionClick, Button: "left"})
	return err
}

func (b *PluginBackend) Toggle(down bool) error {
	_, err := b.call(&plugin.Request{Action: plugin.ActionToggle, Button: "left", Down: down})
	return err
}

func (b *PluginBackend) KeyTap(key string, modifiers ...string) error {
	_, err := b.call(&plugin.Request{Action: plugin.ActionKeyTap, Key: key, Modifiers: modifiers})
	return err
}

func (b *PluginBackend) ScreenSize() (int, int, error) {
	resp, err := b.call(&plugin.Request{Action: plugin.ActionScreenSize})
	if err != nil {
		return 0, 0, err
	}
	if resp.Width <= 0 || resp.Height <= 0 {
		return 0, 0, fmt.Errorf("plugin %s reported screen size %dx%d", b.plugin.Manifest.Name, resp.Width, resp.Height)
	}
	return resp.Width, resp.Height, nil
}

func (b *PluginBackend) Close() error {
	return b.session.Close()
}
