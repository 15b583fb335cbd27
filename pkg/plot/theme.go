package plot

import (
	"fmt"
)

// Theme bundles every color and style the renderer needs. A zero field
// in a custom theme inherits the corresponding light theme field, one
// field at a time, never the whole object.
type Theme struct {
	Name   string `json:"name"`
	Width  string `json:"width"`
	Height string `json:"height"`

	UpColor         string `json:"up_color"`
	DownColor       string `json:"down_color"`
	BackgroundColor string `json:"background_color"`
	GridColor       string `json:"grid_color"`
	TextColor       string `json:"text_color"`

	BuyColor   string `json:"buy_color"`
	SellColor  string `json:"sell_color"`
	BuySymbol  string `json:"buy_symbol"`
	SellSymbol string `json:"sell_symbol"`

	// Default line colors per series name
	SeriesColors map[string]string `json:"series_colors"`
}

const defaultSeriesColor = "#FF6B6B"

// Light is the base theme; custom themes inherit from it field by field.
func Light() Theme {
	return Theme{
		Name:            "light",
		Width:           "100%",
		Height:          "800px",
		UpColor:         "#ec0000",
		DownColor:       "#00da3c",
		BackgroundColor: "#ffffff",
		GridColor:       "#e0e0e0",
		TextColor:       "#000000",
		BuyColor:        "#00da3c",
		SellColor:       "#ec0000",
		BuySymbol:       "triangle",
		SellSymbol:      "pin",
		SeriesColors: map[string]string{
			"MA5":         "#FF6B6B",
			"MA10":        "#4ECDC4",
			"MA20":        "#45B7D1",
			"MA30":        "#96CEB4",
			"MA60":        "#FFEAA7",
			"EMA12":       "#DDA0DD",
			"EMA26":       "#98D8C8",
			"MACD":        "#FF6B6B",
			"MACD_signal": "#4ECDC4",
			"MACD_hist":   "#45B7D1",
			"RSI":         "#FF6B6B",
			"BOLL_upper":  "#DDA0DD",
			"BOLL_middle": "#98D8C8",
			"BOLL_lower":  "#DDA0DD",
			"KDJ_K":       "#FF6B6B",
			"KDJ_D":       "#4ECDC4",
			"KDJ_J":       "#45B7D1",
		},
	}
}

// Dark overrides the light background, grid and text colors.
func Dark() Theme {
	theme := Light()
	theme.Name = "dark"
	theme.BackgroundColor = "#1f1f1f"
	theme.GridColor = "#404040"
	theme.TextColor = "#ffffff"
	return theme
}

// ThemeByName resolves a built-in theme name.
func ThemeByName(name string) (Theme, error) {
	switch name {
	case "light":
		return Light(), nil
	case "dark":
		return Dark(), nil
	default:
		return Theme{}, fmt.Errorf("%q: %w", name, ErrUnknownTheme)
	}
}

// Resolve fills every unset field from the light base theme so that all
// colors are concrete before rendering. Series colors merge per key.
func (t Theme) Resolve() Theme {
	base := Light()

	pick := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}

	out := Theme{
		Name:            pick(t.Name, "custom"),
		Width:           pick(t.Width, base.Width),
		Height:          pick(t.Height, base.Height),
		UpColor:         pick(t.UpColor, base.UpColor),
		DownColor:       pick(t.DownColor, base.DownColor),
		BackgroundColor: pick(t.BackgroundColor, base.BackgroundColor),
		GridColor:       pick(t.GridColor, base.GridColor),
		TextColor:       pick(t.TextColor, base.TextColor),
		BuyColor:        pick(t.BuyColor, base.BuyColor),
		SellColor:       pick(t.SellColor, base.SellColor),
		BuySymbol:       pick(t.BuySymbol, base.BuySymbol),
		SellSymbol:      pick(t.SellSymbol, base.SellSymbol),
		SeriesColors:    base.SeriesColors,
	}

	for name, color := range t.SeriesColors {
		out.SeriesColors[name] = color
	}

	return out
}

// SeriesColor returns the theme color for a named series.
func (t Theme) SeriesColor(name string) string {
	if color, ok := t.SeriesColors[name]; ok {
		return color
	}
	return defaultSeriesColor
}
