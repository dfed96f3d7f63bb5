// Package sweep estimates the mean outbreak size of every node by seeding
// repeated simulations at each origin. Every trial draws from its own
// random stream derived from (seed, origin, repetition), so the estimate
// does not depend on how origins are scheduled across workers.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/spreading-analysis/pkg/epidemic"
	"github.com/gilchrisn/spreading-analysis/pkg/network"
)

// ProgressCallback reports completed origins. It is called from worker
// goroutines and may run concurrently.
type ProgressCallback func(done, total int)

// Options configures a sweep
type Options struct {
	Model            epidemic.Model
	Params           epidemic.Params
	Repetitions      int
	Seed             uint64
	Workers          int
	ProgressInterval time.Duration
	Progress         ProgressCallback
	Metrics          *Metrics
}

// Result holds the per-node estimates. For SIR the outbreak size is the
// final Recovered count; for SIS it is the final Infected count.
type Result struct {
	M           []float64     `json:"M"`
	StdDev      []float64     `json:"m_std"`
	Repetitions int           `json:"repetitions"`
	Trials      int64         `json:"trials"`
	Workers     int           `json:"workers"`
	Elapsed     time.Duration `json:"elapsed"`
	MemoryMB    int64         `json:"memory_mb"`
}

func (o *Options) normalize() error {
	if o.Model == "" {
		o.Model = epidemic.SIR
	}
	if o.Repetitions < 1 {
		return fmt.Errorf("%w: repetitions must be at least 1, got %d", epidemic.ErrInvalidParams, o.Repetitions)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o.Params.Validate()
}

// Run seeds opts.Repetitions outbreaks at every node of g and averages
// their sizes per origin.
func Run(ctx context.Context, g *network.Graph, opts Options, logger zerolog.Logger) (*Result, error) {
	if g == nil || g.NumNodes == 0 {
		return nil, network.ErrEmptyGraph
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	n := g.NumNodes
	workers := min(opts.Workers, n)

	logger.Info().
		Str("network", g.Name).
		Int("nodes", n).
		Str("model", string(opts.Model)).
		Float64("beta", opts.Params.Beta).
		Float64("gamma", opts.Params.Gamma).
		Int("repetitions", opts.Repetitions).
		Int("workers", workers).
		Msg("Starting sweep")

	// one simulator per worker, handed between tasks
	sims := make(chan *epidemic.Simulator, workers)
	for i := 0; i < workers; i++ {
		sim, err := epidemic.NewSimulator(g, opts.Model, opts.Params)
		if err != nil {
			return nil, err
		}
		sims <- sim
	}

	result := &Result{
		M:           make([]float64, n),
		StdDev:      make([]float64, n),
		Repetitions: opts.Repetitions,
		Workers:     workers,
	}

	var done, trials atomic.Int64
	stopProgress := startProgress(&done, n, opts.ProgressInterval, logger)
	defer stopProgress()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for origin := 0; origin < n; origin++ {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			sim := <-sims
			defer func() { sims <- sim }()

			sizes := make([]float64, opts.Repetitions)
			for rep := range sizes {
				if err := egCtx.Err(); err != nil {
					return err
				}
				rng := epidemic.NewRand(opts.Seed, epidemic.TrialStream(origin, rep))
				out, err := sim.Run([]int{origin}, rng)
				if err != nil {
					return fmt.Errorf("origin %d repetition %d: %w", origin, rep, err)
				}
				sizes[rep] = outbreakSize(opts.Model, out)
				trials.Add(1)
				if opts.Metrics != nil {
					opts.Metrics.Trials.Inc()
					opts.Metrics.OutbreakSize.Observe(sizes[rep])
				}
			}

			result.M[origin], result.StdDev[origin] = meanStdDev(sizes)

			completed := int(done.Add(1))
			if opts.Metrics != nil {
				opts.Metrics.OriginsCompleted.Inc()
			}
			if opts.Progress != nil {
				opts.Progress(completed, n)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("sweep aborted after %d of %d origins: %w", done.Load(), n, err)
	}
	// the loop may have stopped early on a cancelled parent context
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep aborted after %d of %d origins: %w", done.Load(), n, err)
	}

	result.Trials = trials.Load()
	result.Elapsed = time.Since(startTime)
	result.MemoryMB = getMemoryUsage()
	if opts.Metrics != nil {
		opts.Metrics.SweepDuration.Set(result.Elapsed.Seconds())
	}

	logger.Info().
		Int64("trials", result.Trials).
		Dur("elapsed", result.Elapsed).
		Int64("memory_mb", result.MemoryMB).
		Msg("Sweep completed")

	return result, nil
}

func outbreakSize(model epidemic.Model, out epidemic.Outcome) float64 {
	if model == epidemic.SIS {
		return float64(out.Infected)
	}
	return float64(out.Recovered)
}

// meanStdDev returns the sample mean and standard deviation; a single
// sample has zero spread
func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}

// startProgress logs completion percentage every interval until the
// returned stop function is called. A non-positive interval disables it.
func startProgress(done *atomic.Int64, total int, interval time.Duration, logger zerolog.Logger) func() {
	if interval <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				d := done.Load()
				logger.Info().
					Int64("done", d).
					Int("total", total).
					Float64("percent", float64(d)/float64(total)*100).
					Msg("Sweep progress")
			}
		}
	}()

	return func() {
		close(stop)
		<-finished
	}
}

// getMemoryUsage returns current memory usage in MB
func getMemoryUsage() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}

// IsCanceled reports whether err stems from context cancellation
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
