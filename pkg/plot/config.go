package plot

import (
	"fmt"

	"github.com/StudioSol/set"
)

// Request is one configured indicator: a name (possibly carrying an
// inline period, e.g. "MA20"), its parameter overrides and an enabled
// flag. Requests are keyed by name inside a Config.
type Request struct {
	Name    string
	Params  Params
	Enabled bool
}

// Config is the per-strategy plot configuration store. Strategies fill
// it during initialization; the composer consumes it at render time.
// It is not shared between strategy instances and renders are
// synchronous, so no locking is needed.
type Config struct {
	theme    *Theme
	order    *set.LinkedHashSetString
	requests map[string]*Request
}

// NewConfig creates an empty configuration store.
func NewConfig() *Config {
	return &Config{
		order:    set.NewLinkedHashSetString(),
		requests: make(map[string]*Request),
	}
}

// ConfigureTheme sets the strategy theme; the last call wins. Partial
// custom themes are resolved against the light base at render time.
func (c *Config) ConfigureTheme(theme Theme) {
	c.theme = &theme
}

// ConfigureThemeName sets a built-in theme by name.
func (c *Config) ConfigureThemeName(name string) error {
	theme, err := ThemeByName(name)
	if err != nil {
		return err
	}
	c.theme = &theme
	return nil
}

// Theme returns the configured theme, or nil when none was set.
func (c *Config) Theme() *Theme {
	return c.theme
}

// AddIndicator inserts an indicator request, or replaces the parameters
// and enabled flag of an existing one. A replaced request keeps its
// original position in the stacking order.
func (c *Config) AddIndicator(name string, enabled bool, params Params) {
	c.order.Add(name)
	c.requests[name] = &Request{
		Name:    name,
		Params:  params.Clone(),
		Enabled: enabled,
	}
}

// RemoveIndicator deletes the request; removing an unknown name is a no-op.
func (c *Config) RemoveIndicator(name string) {
	if _, ok := c.requests[name]; !ok {
		return
	}
	c.order.Remove(name)
	delete(c.requests, name)
}

// EnableIndicator toggles a request without touching its parameters.
// Unlike removal, toggling a name that was never added is an error.
func (c *Config) EnableIndicator(name string, enabled bool) error {
	request, ok := c.requests[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownRequest)
	}
	request.Enabled = enabled
	return nil
}

// Enabled returns copies of the enabled requests in insertion order.
// This order determines sub-pane stacking in the rendered chart.
func (c *Config) Enabled() []Request {
	out := make([]Request, 0, len(c.requests))
	for name := range c.order.Iter() {
		if request, ok := c.requests[name]; ok && request.Enabled {
			out = append(out, *request)
		}
	}
	return out
}

// Requests returns copies of all requests in insertion order.
func (c *Config) Requests() []Request {
	out := make([]Request, 0, len(c.requests))
	for name := range c.order.Iter() {
		if request, ok := c.requests[name]; ok {
			out = append(out, *request)
		}
	}
	return out
}

// Len returns the number of configured requests.
func (c *Config) Len() int {
	return len(c.requests)
}
