package plot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThemeByName(t *testing.T) {
	light, err := ThemeByName("light")
	require.NoError(t, err)
	require.Equal(t, "#ffffff", light.BackgroundColor)

	dark, err := ThemeByName("dark")
	require.NoError(t, err)
	require.Equal(t, "#1f1f1f", dark.BackgroundColor)
	require.Equal(t, "#404040", dark.GridColor)
	require.Equal(t, light.UpColor, dark.UpColor)

	_, err = ThemeByName("solarized")
	require.ErrorIs(t, err, ErrUnknownTheme)
	require.Contains(t, err.Error(), "solarized")
}

func TestTheme_ResolvePartialCustom(t *testing.T) {
	custom := Theme{UpColor: "#00ff00"}

	resolved := custom.Resolve()
	require.Equal(t, "#00ff00", resolved.UpColor)
	require.Equal(t, "#00da3c", resolved.DownColor)
	require.Equal(t, "#ffffff", resolved.BackgroundColor)
	require.Equal(t, "custom", resolved.Name)
	require.Equal(t, "800px", resolved.Height)
}

func TestTheme_ResolveMergesSeriesColors(t *testing.T) {
	custom := Theme{
		SeriesColors: map[string]string{"RSI": "#123456"},
	}

	resolved := custom.Resolve()
	require.Equal(t, "#123456", resolved.SeriesColor("RSI"))
	require.Equal(t, "#45B7D1", resolved.SeriesColor("MA20"))
}

func TestTheme_SeriesColorFallback(t *testing.T) {
	theme := Light()
	require.Equal(t, defaultSeriesColor, theme.SeriesColor("MA7"))
	require.Equal(t, "#FF6B6B", theme.SeriesColor("MA5"))
}
