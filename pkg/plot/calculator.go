package plot

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/quantado/backplot/pkg/core"
)

// Computed is the result of evaluating one indicator request: the
// resolved definition plus its named output series, every one aligned
// with the dataframe timestamps.
type Computed struct {
	Request    string
	Definition Definition
	Series     []Series
}

// NewComputed wraps externally precomputed series in a descriptor the
// composer accepts, the extension point for custom one-off indicators.
func NewComputed(name string, pane PaneType, style PlotStyle, series ...Series) *Computed {
	return &Computed{
		Request: name,
		Definition: Definition{
			Name:  name,
			Pane:  pane,
			Style: style,
		},
		Series: series,
	}
}

// Compute resolves a request name against the registry and evaluates
// the indicator over the dataframe. The inline period of names like
// "MA20" fills the default period; an explicit period parameter is
// authoritative. Compute has no side effects.
func Compute(r *Registry, df *core.Dataframe, name string, params Params) (*Computed, error) {
	def, inline, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	merged := def.Defaults.Clone()
	if merged == nil {
		merged = Params{}
	}
	if inline > 0 {
		merged["period"] = inline
	}
	for k, v := range params {
		merged[k] = v
	}

	if err := checkInputs(df, name, def.Inputs); err != nil {
		return nil, err
	}

	series, err := def.Compute(df, merged)
	if err != nil {
		return nil, err
	}

	for i := range series {
		if series[i].Style == "" {
			series[i].Style = def.Style
		}
	}

	return &Computed{Request: name, Definition: def, Series: series}, nil
}

func checkInputs(df *core.Dataframe, name string, inputs []Column) error {
	for _, col := range inputs {
		var missing bool
		switch col {
		case ColumnOpen:
			missing = len(df.Open) == 0
		case ColumnHigh:
			missing = len(df.High) == 0
		case ColumnLow:
			missing = len(df.Low) == 0
		case ColumnClose:
			missing = len(df.Close) == 0
		case ColumnVolume:
			missing = len(df.Volume) == 0
		}
		if missing {
			return fmt.Errorf("%s requires column %q: %w", name, col, ErrMissingInputColumn)
		}
	}
	return nil
}

func registerBuiltins(r *Registry) {
	r.Register(Definition{
		Name:     "MA",
		Pane:     PaneOverlay,
		Style:    StyleLine,
		Defaults: Params{"period": 20},
		Inputs:   []Column{ColumnClose},
		Compute:  computeMA,
	})
	r.Register(Definition{
		Name:     "EMA",
		Pane:     PaneOverlay,
		Style:    StyleLine,
		Defaults: Params{"period": 12},
		Inputs:   []Column{ColumnClose},
		Compute:  computeEMA,
	})
	r.Register(Definition{
		Name:     "MACD",
		Pane:     PaneSubplot,
		Style:    StyleLine,
		Defaults: Params{"fast": 12, "slow": 26, "signal": 9},
		Inputs:   []Column{ColumnClose},
		Compute:  computeMACD,
	})
	r.Register(Definition{
		Name:     "RSI",
		Pane:     PaneSubplot,
		Style:    StyleLine,
		Defaults: Params{"period": 14},
		Inputs:   []Column{ColumnClose},
		Compute:  computeRSI,
	})
	r.Register(Definition{
		Name:     "BOLL",
		Pane:     PaneOverlay,
		Style:    StyleBand,
		Defaults: Params{"period": 20, "std": 2.0},
		Inputs:   []Column{ColumnClose},
		Compute:  computeBOLL,
	})
	r.Register(Definition{
		Name:     "KDJ",
		Pane:     PaneSubplot,
		Style:    StyleLine,
		Defaults: Params{"n": 9, "m1": 3, "m2": 3},
		Inputs:   []Column{ColumnHigh, ColumnLow, ColumnClose},
		Compute:  computeKDJ,
	})
	r.Register(Definition{
		Name:     "STOCH",
		Pane:     PaneSubplot,
		Style:    StyleLine,
		Defaults: Params{"k_period": 14, "d_period": 3},
		Inputs:   []Column{ColumnHigh, ColumnLow, ColumnClose},
		Compute:  computeStoch,
	})
	r.Register(Definition{
		Name:     "ATR",
		Pane:     PaneSubplot,
		Style:    StyleLine,
		Defaults: Params{"period": 14},
		Inputs:   []Column{ColumnHigh, ColumnLow, ColumnClose},
		Compute:  computeATR,
	})
	r.Register(Definition{
		Name:     "WILLR",
		Pane:     PaneSubplot,
		Style:    StyleLine,
		Defaults: Params{"period": 14},
		Inputs:   []Column{ColumnHigh, ColumnLow, ColumnClose},
		Compute:  computeWILLR,
	})
	r.Register(Definition{
		Name:    "VOL",
		Pane:    PaneSubplot,
		Style:   StyleBar,
		Inputs:  []Column{ColumnVolume},
		Compute: computeVOL,
	})
}

// nanPrefix overwrites the first n values with NaN. The talib port
// zero-fills its lookback region; undefined positions must be NaN so
// a missing window is never mistaken for a zero reading.
func nanPrefix(values []float64, n int) core.Series[float64] {
	for i := 0; i < n && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}

// nanSeries is an all-undefined series for frames shorter than the lookback.
func nanSeries(n int) core.Series[float64] {
	values := make(core.Series[float64], n)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}

func computeMA(df *core.Dataframe, p Params) ([]Series, error) {
	period, err := intParam(p, "MA", "period", 1)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("MA%d", period)
	if df.Len() < period {
		return []Series{{Name: name, Values: nanSeries(df.Len())}}, nil
	}

	values := nanPrefix(talib.Sma(df.Close, period), period-1)
	return []Series{{Name: name, Values: values}}, nil
}

func computeEMA(df *core.Dataframe, p Params) ([]Series, error) {
	period, err := intParam(p, "EMA", "period", 1)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("EMA%d", period)
	if df.Len() < period {
		return []Series{{Name: name, Values: nanSeries(df.Len())}}, nil
	}

	// talib seeds the EMA with the simple average of the first window
	// and recurs forward from there.
	values := nanPrefix(talib.Ema(df.Close, period), period-1)
	return []Series{{Name: name, Values: values}}, nil
}

func computeMACD(df *core.Dataframe, p Params) ([]Series, error) {
	fast, err := intParam(p, "MACD", "fast", 1)
	if err != nil {
		return nil, err
	}
	slow, err := intParam(p, "MACD", "slow", 1)
	if err != nil {
		return nil, err
	}
	signal, err := intParam(p, "MACD", "signal", 1)
	if err != nil {
		return nil, err
	}
	if fast >= slow {
		return nil, fmt.Errorf("MACD: fast (%d) must be < slow (%d): %w", fast, slow, ErrInvalidParameter)
	}

	warmup := slow + signal - 2
	if df.Len() <= warmup {
		blank := nanSeries(df.Len())
		return []Series{
			{Name: "MACD", Values: blank},
			{Name: "MACD_signal", Values: append(core.Series[float64]{}, blank...)},
			{Name: "MACD_hist", Style: StyleBar, Values: append(core.Series[float64]{}, blank...)},
		}, nil
	}

	macdLine, signalLine, hist := talib.Macd(df.Close, fast, slow, signal)
	return []Series{
		{Name: "MACD", Values: nanPrefix(macdLine, slow-1)},
		{Name: "MACD_signal", Values: nanPrefix(signalLine, warmup)},
		{Name: "MACD_hist", Style: StyleBar, Values: nanPrefix(hist, warmup)},
	}, nil
}

func computeRSI(df *core.Dataframe, p Params) ([]Series, error) {
	period, err := intParam(p, "RSI", "period", 1)
	if err != nil {
		return nil, err
	}

	if df.Len() <= period {
		return []Series{{Name: "RSI", Values: nanSeries(df.Len())}}, nil
	}

	// Wilder smoothing, first `period` points undefined.
	values := nanPrefix(talib.Rsi(df.Close, period), period)
	return []Series{{Name: "RSI", Values: values}}, nil
}

func computeBOLL(df *core.Dataframe, p Params) ([]Series, error) {
	period, err := intParam(p, "BOLL", "period", 1)
	if err != nil {
		return nil, err
	}
	std, err := floatParam(p, "BOLL", "std", 0)
	if err != nil {
		return nil, err
	}
	if std <= 0 {
		return nil, fmt.Errorf("BOLL: \"std\" must be > 0, got %v: %w", std, ErrInvalidParameter)
	}

	if df.Len() < period {
		blank := nanSeries(df.Len())
		return []Series{
			{Name: "BOLL_upper", Values: blank},
			{Name: "BOLL_middle", Values: append(core.Series[float64]{}, blank...)},
			{Name: "BOLL_lower", Values: append(core.Series[float64]{}, blank...)},
		}, nil
	}

	upper, middle, lower := talib.BBands(df.Close, period, std, std, talib.SMA)
	return []Series{
		{Name: "BOLL_upper", Values: nanPrefix(upper, period-1)},
		{Name: "BOLL_middle", Values: nanPrefix(middle, period-1)},
		{Name: "BOLL_lower", Values: nanPrefix(lower, period-1)},
	}, nil
}

func computeKDJ(df *core.Dataframe, p Params) ([]Series, error) {
	n, err := intParam(p, "KDJ", "n", 1)
	if err != nil {
		return nil, err
	}
	m1, err := intParam(p, "KDJ", "m1", 1)
	if err != nil {
		return nil, err
	}
	m2, err := intParam(p, "KDJ", "m2", 1)
	if err != nil {
		return nil, err
	}

	size := df.Len()
	if size < n {
		blank := nanSeries(size)
		return []Series{
			{Name: "KDJ_K", Values: blank},
			{Name: "KDJ_D", Values: append(core.Series[float64]{}, blank...)},
			{Name: "KDJ_J", Values: append(core.Series[float64]{}, blank...)},
		}, nil
	}

	highest := nanPrefix(talib.Max(df.High, n), n-1)
	lowest := nanPrefix(talib.Min(df.Low, n), n-1)

	rsv := make([]float64, size)
	for i := range rsv {
		spread := highest[i] - lowest[i]
		if math.IsNaN(spread) || spread == 0 {
			rsv[i] = math.NaN()
			continue
		}
		rsv[i] = 100 * (df.Close[i] - lowest[i]) / spread
	}

	k := smoothAlpha(rsv, 1/float64(m1))
	d := smoothAlpha(k, 1/float64(m2))

	j := make(core.Series[float64], size)
	for i := range j {
		j[i] = 3*k[i] - 2*d[i]
	}

	return []Series{
		{Name: "KDJ_K", Values: k},
		{Name: "KDJ_D", Values: d},
		{Name: "KDJ_J", Values: j},
	}, nil
}

func computeStoch(df *core.Dataframe, p Params) ([]Series, error) {
	kPeriod, err := intParam(p, "STOCH", "k_period", 1)
	if err != nil {
		return nil, err
	}
	dPeriod, err := intParam(p, "STOCH", "d_period", 1)
	if err != nil {
		return nil, err
	}

	size := df.Len()
	if size < kPeriod {
		blank := nanSeries(size)
		return []Series{
			{Name: "STOCH_K", Values: blank},
			{Name: "STOCH_D", Values: append(core.Series[float64]{}, blank...)},
		}, nil
	}

	highest := nanPrefix(talib.Max(df.High, kPeriod), kPeriod-1)
	lowest := nanPrefix(talib.Min(df.Low, kPeriod), kPeriod-1)

	k := make([]float64, size)
	for i := range k {
		spread := highest[i] - lowest[i]
		if math.IsNaN(spread) || spread == 0 {
			k[i] = math.NaN()
			continue
		}
		k[i] = 100 * (df.Close[i] - lowest[i]) / spread
	}

	d := rollingMean(k, dPeriod)

	return []Series{
		{Name: "STOCH_K", Values: k},
		{Name: "STOCH_D", Values: d},
	}, nil
}

func computeATR(df *core.Dataframe, p Params) ([]Series, error) {
	period, err := intParam(p, "ATR", "period", 1)
	if err != nil {
		return nil, err
	}

	if df.Len() <= period {
		return []Series{{Name: "ATR", Values: nanSeries(df.Len())}}, nil
	}

	values := nanPrefix(talib.Atr(df.High, df.Low, df.Close, period), period)
	return []Series{{Name: "ATR", Values: values}}, nil
}

func computeWILLR(df *core.Dataframe, p Params) ([]Series, error) {
	period, err := intParam(p, "WILLR", "period", 1)
	if err != nil {
		return nil, err
	}

	if df.Len() < period {
		return []Series{{Name: "WILLR", Values: nanSeries(df.Len())}}, nil
	}

	values := nanPrefix(talib.WillR(df.High, df.Low, df.Close, period), period-1)
	return []Series{{Name: "WILLR", Values: values}}, nil
}

func computeVOL(df *core.Dataframe, _ Params) ([]Series, error) {
	values := make(core.Series[float64], len(df.Volume))
	copy(values, df.Volume)
	return []Series{{Name: "VOL", Style: StyleBar, Values: values}}, nil
}

// smoothAlpha applies the recursive smoothing k[i] = alpha*src[i] +
// (1-alpha)*k[i-1], seeded by the first defined source value. This is
// the 1/m exponential form KDJ uses, which plain moving-average based
// stochastics do not match.
func smoothAlpha(src []float64, alpha float64) core.Series[float64] {
	out := make(core.Series[float64], len(src))
	prev := math.NaN()
	for i, v := range src {
		if math.IsNaN(v) {
			// undefined readings stay undefined; the smoother state
			// survives across them
			out[i] = math.NaN()
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// rollingMean averages a trailing window, undefined until the window
// is full of defined values.
func rollingMean(src []float64, window int) core.Series[float64] {
	out := make(core.Series[float64], len(src))
	for i := range src {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		defined := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(src[j]) {
				defined = false
				break
			}
			sum += src[j]
		}
		if !defined {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}
