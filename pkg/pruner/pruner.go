package pruner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/client-go/util/flowcontrol"

	"github.com/FairwindsOps/index-pruner/pkg/elastic"
	"github.com/FairwindsOps/index-pruner/pkg/retention"
)

// Prometheus metrics
var (
	indicesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "index_pruner_indices_deleted_total",
		Help: "Total number of indices deleted",
	})
	indexDeleteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "index_pruner_delete_failures_total",
		Help: "Total number of failed index deletions",
	})
	indicesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "index_pruner_indices_scanned_total",
		Help: "Total number of index names listed from the cluster",
	})
	indicesPlannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "index_pruner_indices_planned_total",
		Help: "Total number of indices old enough to be deleted",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "index_pruner_run_duration_seconds",
		Help:    "Duration of prune runs in seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4min
	})
	lastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "index_pruner_last_success_timestamp_seconds",
		Help: "Unix time of the last run that completed without a fatal error",
	})
)

// pushJob is the Pushgateway job name.
const pushJob = "index_pruner"

// IndexClient lists and deletes indices in the cluster.
type IndexClient interface {
	ListIndices(ctx context.Context, prefix string) ([]string, error)
	DeleteIndex(ctx context.Context, name string) (int, error)
}

// Result summarizes a prune run.
type Result struct {
	// Listed is the number of index names returned by the cluster.
	Listed int
	// Matched is the number of names with a valid date fragment.
	Matched int
	// Plan is the list of indices old enough to be deleted, in deletion order.
	Plan retention.Plan
	// Deleted is the number of indices actually deleted.
	Deleted int
	// Failed holds one error per index that could not be deleted.
	Failed []error
}

// Err aggregates the per-index delete failures, or returns nil.
func (r *Result) Err() error {
	return utilerrors.NewAggregate(r.Failed)
}

// Pruner deletes indices older than a month threshold.
type Pruner struct {
	opts    Options
	client  IndexClient
	matcher *retention.Matcher
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a new Pruner instance.
func New(opts Options) (*Pruner, error) {
	// Set up logger
	logLevel := slog.LevelInfo
	if opts.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("run_id", uuid.NewString())

	client, err := elastic.New(elastic.Config{
		URL:      opts.URL,
		Username: opts.Username,
		Password: opts.Password,
		Timeout:  opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster client: %w", err)
	}

	return newPruner(opts, client, logger)
}

func newPruner(opts Options, client IndexClient, logger *slog.Logger) (*Pruner, error) {
	if opts.OlderThanMonths < 0 {
		return nil, fmt.Errorf("%w: %d", retention.ErrNegativeThreshold, opts.OlderThanMonths)
	}

	matcher, err := retention.NewMatcher(opts.DatePattern, opts.IndexPrefix)
	if err != nil {
		return nil, err
	}

	return &Pruner{
		opts:    opts,
		client:  client,
		matcher: matcher,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Run executes a single prune pass and pushes metrics if a Pushgateway is configured.
func (p *Pruner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := p.RunOnce(ctx)
	runDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		lastSuccessTimestamp.SetToCurrentTime()
	}

	if p.opts.PushgatewayURL != "" {
		if pushErr := p.pushMetrics(ctx); pushErr != nil {
			p.logger.Error("failed to push metrics",
				"url", p.opts.PushgatewayURL,
				"error", pushErr)
		}
	}

	return res, err
}

// RunOnce lists the indices, builds the deletion plan and executes it.
// Failing to list indices aborts the run. Failing to delete an index is
// logged and recorded in the result, and the remaining indices are still processed.
func (p *Pruner) RunOnce(ctx context.Context) (*Result, error) {
	p.logger.Info("cutoff: indices older than or equal to the threshold will be deleted",
		"older_than_months", p.opts.OlderThanMonths,
		"index_prefix", p.opts.IndexPrefix,
		"date_pattern", p.opts.DatePattern)

	if p.opts.DryRun {
		p.logger.Info("running in dry-run mode - nothing will be deleted")
	}

	names, err := p.client.ListIndices(ctx, p.opts.IndexPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list indices: %w", err)
	}

	p.logger.Info("fetched index names", "count", len(names))
	indicesScannedTotal.Add(float64(len(names)))

	retention.SortByDateFragment(names, p.opts.IndexPrefix)
	p.logger.Debug("sorted index names by date fragment", "count", len(names))

	candidates := retention.Evaluate(p.matcher, names, p.now(), p.logger)
	plan := retention.SelectForDeletion(candidates, p.opts.OlderThanMonths)
	indicesPlannedTotal.Add(float64(len(plan)))

	res := &Result{
		Listed:  len(names),
		Matched: len(candidates),
		Plan:    plan,
	}

	if len(plan) == 0 {
		p.logger.Info("nothing to delete (0 indices match threshold)")
		return res, nil
	}

	if p.opts.DryRun {
		p.logger.Info("dry-run: would delete indices", "count", len(plan))
		for _, c := range plan {
			p.logger.Info("would delete index",
				"index", c.Name,
				"age_months", c.AgeMonths)
		}
		return res, nil
	}

	p.logger.Info("deleting indices", "count", len(plan))
	if err := p.deletePlan(ctx, plan, res); err != nil {
		return res, err
	}

	if err := res.Err(); err != nil {
		p.logger.Error("some indices could not be deleted",
			"failed", len(res.Failed),
			"error", err)
	}
	p.logger.Info("prune run complete",
		"deleted", res.Deleted,
		"failed", len(res.Failed))
	return res, nil
}

// deletePlan deletes the planned indices in order. Only context cancellation
// stops it early.
func (p *Pruner) deletePlan(ctx context.Context, plan retention.Plan, res *Result) error {
	limiter := p.newRateLimiter()
	defer limiter.Stop()

	for _, c := range plan {
		// Check for context cancellation
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		status, err := p.client.DeleteIndex(ctx, c.Name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("failed to delete index",
				"index", c.Name,
				"status", status,
				"error", err)
			indexDeleteFailuresTotal.Inc()
			res.Failed = append(res.Failed, err)
			continue
		}

		p.logger.Info("deleted index",
			"index", c.Name,
			"age_months", c.AgeMonths,
			"status", status)
		indicesDeletedTotal.Inc()
		res.Deleted++
	}

	return nil
}

// newRateLimiter spaces deletes by DeleteRateLimit. The bucket starts full so
// the first delete is not delayed.
func (p *Pruner) newRateLimiter() flowcontrol.RateLimiter {
	if p.opts.DeleteRateLimit <= 0 {
		return flowcontrol.NewFakeAlwaysRateLimiter()
	}
	qps := float32(1 / p.opts.DeleteRateLimit.Seconds())
	return flowcontrol.NewTokenBucketRateLimiter(qps, 1)
}

// pushMetrics sends the pruner metrics to the configured Pushgateway.
func (p *Pruner) pushMetrics(ctx context.Context) error {
	return push.New(p.opts.PushgatewayURL, pushJob).
		Grouping("index_prefix", p.opts.IndexPrefix).
		Collector(indicesDeletedTotal).
		Collector(indexDeleteFailuresTotal).
		Collector(indicesScannedTotal).
		Collector(indicesPlannedTotal).
		Collector(runDuration).
		Collector(lastSuccessTimestamp).
		PushContext(ctx)
}
