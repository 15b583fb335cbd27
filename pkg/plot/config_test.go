package plot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_AddRemoveRoundtrip(t *testing.T) {
	cfg := NewConfig()
	cfg.AddIndicator("MA20", true, nil)
	cfg.AddIndicator("RSI", true, nil)
	require.Equal(t, 2, cfg.Len())

	cfg.RemoveIndicator("MA20")
	require.Equal(t, 1, cfg.Len())
	require.Equal(t, "RSI", cfg.Requests()[0].Name)

	// removing an unknown name is fine
	cfg.RemoveIndicator("MA20")
	require.Equal(t, 1, cfg.Len())
}

func TestConfig_ReAddKeepsPosition(t *testing.T) {
	cfg := NewConfig()
	cfg.AddIndicator("MA20", true, nil)
	cfg.AddIndicator("RSI", true, nil)
	cfg.AddIndicator("MACD", true, nil)

	cfg.AddIndicator("MA20", true, Params{"period": 50})

	requests := cfg.Requests()
	require.Equal(t, "MA20", requests[0].Name)
	require.Equal(t, "RSI", requests[1].Name)
	require.Equal(t, "MACD", requests[2].Name)

	period, ok := requests[0].Params.Int("period")
	require.True(t, ok)
	require.Equal(t, 50, period)
}

func TestConfig_AddDisabled(t *testing.T) {
	cfg := NewConfig()
	cfg.AddIndicator("MA20", true, nil)
	cfg.AddIndicator("KDJ", false, nil)

	enabled := cfg.Enabled()
	require.Len(t, enabled, 1)
	require.Equal(t, "MA20", enabled[0].Name)

	// re-adding enabled flips the flag and keeps the position
	cfg.AddIndicator("KDJ", true, nil)
	enabled = cfg.Enabled()
	require.Len(t, enabled, 2)
	require.Equal(t, "KDJ", enabled[1].Name)
}

func TestConfig_EnableDisable(t *testing.T) {
	cfg := NewConfig()
	cfg.AddIndicator("MA20", true, nil)
	cfg.AddIndicator("RSI", true, nil)

	require.NoError(t, cfg.EnableIndicator("RSI", false))
	enabled := cfg.Enabled()
	require.Len(t, enabled, 1)
	require.Equal(t, "MA20", enabled[0].Name)

	require.NoError(t, cfg.EnableIndicator("RSI", true))
	require.Len(t, cfg.Enabled(), 2)

	err := cfg.EnableIndicator("KDJ", true)
	require.ErrorIs(t, err, ErrUnknownRequest)
	require.Contains(t, err.Error(), "KDJ")
}

func TestConfig_ParamsAreCopied(t *testing.T) {
	cfg := NewConfig()
	params := Params{"period": 20}
	cfg.AddIndicator("MA", true, params)

	params["period"] = 99
	stored, _ := cfg.Requests()[0].Params.Int("period")
	require.Equal(t, 20, stored)
}

func TestConfig_Theme(t *testing.T) {
	cfg := NewConfig()
	require.Nil(t, cfg.Theme())

	require.NoError(t, cfg.ConfigureThemeName("dark"))
	require.Equal(t, "dark", cfg.Theme().Name)

	require.ErrorIs(t, cfg.ConfigureThemeName("neon"), ErrUnknownTheme)
	require.Equal(t, "dark", cfg.Theme().Name)

	cfg.ConfigureTheme(Theme{UpColor: "#00ff00"})
	require.Equal(t, "#00ff00", cfg.Theme().UpColor)
}
