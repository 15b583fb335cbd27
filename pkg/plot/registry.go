package plot

import (
	"fmt"
	"strings"

	"github.com/StudioSol/set"
	"github.com/quantado/backplot/pkg/core"
)

// PaneType decides where an indicator is drawn.
type PaneType string

const (
	// PaneOverlay indicators are layered onto the main price pane.
	PaneOverlay PaneType = "overlay"
	// PaneSubplot indicators each get their own stacked pane.
	PaneSubplot PaneType = "subplot"
)

// PlotStyle is the default drawing style of an indicator's series.
type PlotStyle string

const (
	StyleLine PlotStyle = "line"
	StyleBar  PlotStyle = "bar"
	StyleArea PlotStyle = "area"
	StyleBand PlotStyle = "band"
)

// Column names a dataframe input an indicator depends on.
type Column string

const (
	ColumnOpen   Column = "open"
	ColumnHigh   Column = "high"
	ColumnLow    Column = "low"
	ColumnClose  Column = "close"
	ColumnVolume Column = "volume"
)

// Series is one named output sequence of an indicator, aligned 1:1
// with the dataframe timestamps. Undefined warmup positions are NaN.
type Series struct {
	Name   string
	Style  PlotStyle
	Values core.Series[float64]
}

// ComputeFunc evaluates an indicator over a dataframe. Implementations
// are pure: same input, same output, no state across calls.
type ComputeFunc func(df *core.Dataframe, p Params) ([]Series, error)

// Definition is a registry entry: the computation function plus the
// display metadata the composer needs. Immutable after registration.
type Definition struct {
	Name     string
	Pane     PaneType
	Style    PlotStyle
	Defaults Params
	Inputs   []Column
	Compute  ComputeFunc
}

// Registry maps indicator names to definitions. It is built once with
// the built-in set; callers may add custom definitions before first
// use. Registration is not safe for concurrent use with lookups.
type Registry struct {
	names *set.LinkedHashSetString
	defs  map[string]Definition
}

// NewRegistry creates a registry preloaded with the built-in indicators.
func NewRegistry() *Registry {
	r := &Registry{
		names: set.NewLinkedHashSetString(),
		defs:  make(map[string]Definition),
	}
	registerBuiltins(r)
	return r
}

// Register adds or overwrites a definition, keyed by its upper-cased name.
func (r *Registry) Register(def Definition) {
	name := strings.ToUpper(def.Name)
	def.Name = name
	r.names.Add(name)
	r.defs[name] = def
}

// Lookup returns the definition registered under the exact name.
func (r *Registry) Lookup(name string) (Definition, error) {
	def, ok := r.defs[strings.ToUpper(name)]
	if !ok {
		return Definition{}, fmt.Errorf("%q: %w", name, ErrUnknownIndicator)
	}
	return def, nil
}

// Resolve finds the definition for a request name, falling back to the
// inline-period form ("MA20" resolves to "MA" with a default period of
// 20) when no exact entry exists.
func (r *Registry) Resolve(name string) (Definition, int, error) {
	if def, ok := r.defs[strings.ToUpper(name)]; ok {
		return def, 0, nil
	}

	base, period, ok := ParseName(name)
	if ok {
		if def, found := r.defs[base]; found {
			return def, period, nil
		}
	}

	return Definition{}, 0, fmt.Errorf("%q: %w", name, ErrUnknownIndicator)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.names.Length())
	for name := range r.names.Iter() {
		names = append(names, name)
	}
	return names
}
