// Package optimizer sweeps strategy parameters over a dataframe and
// ranks the combinations by a chosen performance metric.
package optimizer

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/quantado/backplot/pkg/backtest"
	"github.com/quantado/backplot/pkg/core"
	"github.com/quantado/backplot/pkg/logger"
)

// ErrNoParameters is returned when a grid search has nothing to sweep.
var ErrNoParameters = errors.New("at least one parameter must be provided")

// Parameter is one integer dimension of the search grid.
type Parameter struct {
	Name string
	Min  int
	Max  int
	Step int
}

// ParameterSet is one point of the grid.
type ParameterSet map[string]int

// Factory builds a strategy instance for a parameter set.
type Factory func(params ParameterSet) backtest.Strategy

// Metric scores a finished run; higher is better.
type Metric func(summary backtest.Summary) float64

// Built-in metrics.
var (
	Profit  Metric = func(s backtest.Summary) float64 { return s.Profit() }
	SQN     Metric = func(s backtest.Summary) float64 { return s.SQN() }
	WinRate Metric = func(s backtest.Summary) float64 { return s.WinRate() }
)

// Result is the outcome of evaluating one parameter set.
type Result struct {
	Parameters ParameterSet
	Score      float64
	Summary    backtest.Summary
}

// GridSearch evaluates every combination of the parameter grid.
type GridSearch struct {
	parameters  []Parameter
	parallelism int
	log         logger.Logger
	engineOpts  []backtest.Option
}

// NewGridSearch creates a grid search. Parallelism below 1 runs
// sequentially.
func NewGridSearch(log logger.Logger, parallelism int, parameters []Parameter, engineOpts ...backtest.Option) (*GridSearch, error) {
	if len(parameters) == 0 {
		return nil, ErrNoParameters
	}
	if parallelism < 1 {
		parallelism = 1
	}

	return &GridSearch{
		parameters:  parameters,
		parallelism: parallelism,
		log:         log,
		engineOpts:  engineOpts,
	}, nil
}

// Optimize runs the full grid and returns the results sorted by score,
// best first. Individual failed runs are logged and skipped.
func (g *GridSearch) Optimize(ctx context.Context, df *core.Dataframe, factory Factory, metric Metric) ([]Result, error) {
	grid := g.expandGrid()
	g.log.Infof("optimizing %d parameter combinations", len(grid))

	jobs := make(chan ParameterSet)
	results := make(chan Result, len(grid))

	var wg sync.WaitGroup
	for worker := 0; worker < g.parallelism; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.evaluate(ctx, df, factory, metric, jobs, results)
		}()
	}

	for _, params := range grid {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- params:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	ranked := make([]Result, 0, len(grid))
	for result := range results {
		ranked = append(ranked, result)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	df *core.Dataframe,
	factory Factory,
	metric Metric,
	jobs <-chan ParameterSet,
	results chan<- Result,
) {
	opts := append([]backtest.Option{backtest.WithProgressBar(false)}, g.engineOpts...)
	engine := backtest.NewEngine(g.log, opts...)

	for params := range jobs {
		run, err := engine.Run(ctx, df, factory(params))
		if err != nil {
			g.log.WithError(err).Warnf("skipping parameter set %v", params)
			continue
		}

		summary := backtest.NewSummary(run)
		results <- Result{
			Parameters: params,
			Score:      metric(summary),
			Summary:    summary,
		}
	}
}

// expandGrid enumerates the cartesian product of the parameter ranges.
func (g *GridSearch) expandGrid() []ParameterSet {
	grid := []ParameterSet{{}}

	for _, parameter := range g.parameters {
		step := parameter.Step
		if step < 1 {
			step = 1
		}

		expanded := make([]ParameterSet, 0, len(grid))
		for value := parameter.Min; value <= parameter.Max; value += step {
			for _, base := range grid {
				point := make(ParameterSet, len(base)+1)
				for k, v := range base {
					point[k] = v
				}
				point[parameter.Name] = value
				expanded = append(expanded, point)
			}
		}
		grid = expanded
	}

	return grid
}
