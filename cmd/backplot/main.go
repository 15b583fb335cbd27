package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantado/backplot"
	"github.com/quantado/backplot/pkg/download"
	"github.com/quantado/backplot/pkg/exchange"
	"github.com/quantado/backplot/pkg/plot"
	"github.com/quantado/backplot/pkg/storage"
	"github.com/quantado/backplot/strategies"
)

const dateLayout = "2006-01-02"

// download command flags
var (
	symbol     string
	days       int
	startDate  string
	endDate    string
	timeframe  string
	outputFile string
)

// backtest command flags
var (
	dataFile    string
	cash        float64
	commission  float64
	fastPeriod  int
	slowPeriod  int
	themeName   string
	chartFile   string
	legacyChart bool
	openChart   bool
	tradesDB    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "backplot",
		Short:   "Backtest strategies and render their charts",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildDownloadCmd())
	rootCmd.AddCommand(buildBacktestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical candles to CSV",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVarP(&symbol, "symbol", "p", "", "Trading symbol (e.g. BTCUSDT)")
	downloadCmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to download (default 30 days)")
	downloadCmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (e.g. 2021-12-01)")
	downloadCmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (e.g. 2021-12-31)")
	downloadCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1h", "Timeframe (e.g. 1h)")
	downloadCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (e.g. ./btc.csv)")

	downloadCmd.MarkFlagRequired("symbol")
	downloadCmd.MarkFlagRequired("output")

	return downloadCmd
}

func runDownload(cmd *cobra.Command, _ []string) error {
	options, err := buildDownloadOptions()
	if err != nil {
		return err
	}

	source := download.NewBinanceSource(
		os.Getenv("BINANCE_API_KEY"),
		os.Getenv("BINANCE_API_SECRET"),
	)

	return download.NewDownloader(source, backplot.DefaultLog).Download(
		cmd.Context(),
		symbol,
		timeframe,
		outputFile,
		options...,
	)
}

func buildDownloadOptions() ([]download.Option, error) {
	var options []download.Option

	if days > 0 {
		options = append(options, download.WithDays(days))
	}

	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return nil, fmt.Errorf("start and end dates must be provided together")
		}

		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format: %w", err)
		}

		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format: %w", err)
		}

		options = append(options, download.WithInterval(start, end))
	}

	return options, nil
}

func buildBacktestCmd() *cobra.Command {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the SMA cross strategy over a CSV file and render the chart",
		RunE:  runBacktest,
	}

	backtestCmd.Flags().StringVarP(&symbol, "symbol", "p", "", "Trading symbol (e.g. BTCUSDT)")
	backtestCmd.Flags().StringVarP(&dataFile, "data", "f", "", "CSV file with candles")
	backtestCmd.Flags().Float64Var(&cash, "cash", 10000, "Starting cash")
	backtestCmd.Flags().Float64Var(&commission, "commission", 0.001, "Commission rate per fill")
	backtestCmd.Flags().IntVar(&fastPeriod, "fast", 10, "Fast SMA period")
	backtestCmd.Flags().IntVar(&slowPeriod, "slow", 30, "Slow SMA period")
	backtestCmd.Flags().StringVar(&themeName, "theme", "", "Chart theme (light or dark)")
	backtestCmd.Flags().StringVarP(&chartFile, "output", "o", "chart.html", "Chart output file")
	backtestCmd.Flags().BoolVar(&legacyChart, "legacy-chart", false, "Render the fixed legacy chart layout")
	backtestCmd.Flags().BoolVar(&openChart, "open", false, "Open the chart in the browser")
	backtestCmd.Flags().StringVar(&tradesDB, "trades-db", "", "BuntDB file to persist trades (optional)")

	backtestCmd.MarkFlagRequired("symbol")
	backtestCmd.MarkFlagRequired("data")

	return backtestCmd
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	feed, err := exchange.NewCSVFeed(exchange.PairFile{Symbol: symbol, File: dataFile})
	if err != nil {
		return err
	}

	df, err := feed.Dataframe(symbol)
	if err != nil {
		return err
	}

	options := []backplot.Option{
		backplot.WithCash(cash),
		backplot.WithCommission(commission),
	}

	if tradesDB != "" {
		db, err := storage.FromFile(tradesDB)
		if err != nil {
			return err
		}
		defer db.Close()
		options = append(options, backplot.WithStorage(db))
	}

	bot := backplot.New(options...)

	result, err := bot.Run(cmd.Context(), df, strategies.NewSMACross(fastPeriod, slowPeriod, 1))
	if err != nil {
		return err
	}

	bot.Summary()

	renderOptions := []plot.RenderOption{plot.WithOutput(chartFile)}
	if themeName != "" {
		theme, err := plot.ThemeByName(themeName)
		if err != nil {
			return err
		}
		renderOptions = append(renderOptions, plot.WithTheme(theme))
	}
	if openChart {
		renderOptions = append(renderOptions, plot.WithOpenBrowser())
	}

	return bot.Plot(result, legacyChart, renderOptions...)
}
