package plot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantado/backplot/pkg/core"
)

func TestRegistry_LookupAndResolve(t *testing.T) {
	registry := NewRegistry()

	def, err := registry.Lookup("macd")
	require.NoError(t, err)
	require.Equal(t, "MACD", def.Name)
	require.Equal(t, PaneSubplot, def.Pane)

	_, err = registry.Lookup("MA20")
	require.ErrorIs(t, err, ErrUnknownIndicator)

	def, inline, err := registry.Resolve("MA20")
	require.NoError(t, err)
	require.Equal(t, "MA", def.Name)
	require.Equal(t, 20, inline)

	def, inline, err = registry.Resolve("RSI")
	require.NoError(t, err)
	require.Equal(t, "RSI", def.Name)
	require.Zero(t, inline)

	_, _, err = registry.Resolve("XYZ9")
	require.ErrorIs(t, err, ErrUnknownIndicator)
}

func TestRegistry_RegisterCustom(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Definition{
		Name:  "typical",
		Pane:  PaneOverlay,
		Style: StyleLine,
		Inputs: []Column{
			ColumnHigh, ColumnLow, ColumnClose,
		},
		Compute: func(df *core.Dataframe, _ Params) ([]Series, error) {
			values := make(core.Series[float64], df.Len())
			for i := range values {
				values[i] = (df.High[i] + df.Low[i] + df.Close[i]) / 3
			}
			return []Series{{Name: "TYPICAL", Values: values}}, nil
		},
	})

	result, err := Compute(registry, testDataframe(10), "TYPICAL", nil)
	require.NoError(t, err)
	require.False(t, math.IsNaN(result.Series[0].Values[0]))
	require.Equal(t, StyleLine, result.Series[0].Style)
}

func TestRegistry_NamesKeepRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	names := registry.Names()
	require.Equal(t, "MA", names[0])
	require.Equal(t, "EMA", names[1])
	require.Contains(t, names, "VOL")

	registry.Register(Definition{Name: "CUSTOM", Pane: PaneSubplot})
	names = registry.Names()
	require.Equal(t, "CUSTOM", names[len(names)-1])
}
