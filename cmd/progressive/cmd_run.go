package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-sif/progressive/cluster"
	"github.com/go-sif/progressive/config"
	"github.com/go-sif/progressive/datasource/file"
	"github.com/go-sif/progressive/logging"
	"github.com/go-sif/progressive/query"
	"github.com/go-sif/progressive/scheduler"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func runQueriesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var in io.Reader = os.Stdin
	if len(args) > 0 {
		readers := make([]io.Reader, len(args))
		for i, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			readers[i] = f
		}
		in = io.MultiReader(readers...)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runQueries(ctx, cfg, in, cmd.OutOrStdout())
}

func openDataset(cfg *config.Config) (*file.DataSource, error) {
	return file.Open(cfg.DataDir, &file.Conf{CacheSize: cfg.CacheSize, Logger: cfg.Logger("dataset")})
}

// runQueries submits every query read from in, printing snapshots to out until all of them
// are done, have stalled on failed Jobs, or ctx is cancelled
func runQueries(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger := cfg.Logger("run")
	ds, err := openDataset(cfg)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	conf := &scheduler.Conf{NumWorkers: cfg.NumWorkers, Logger: cfg.Logger("scheduler"), Registerer: registry}
	if len(cfg.Workers) > 0 {
		executor, err := cluster.CreateRemoteExecutor(&cluster.ExecutorOptions{
			Workers:    cfg.Workers,
			RPCTimeout: cfg.RPCTimeout,
			Logger:     cfg.Logger("executor"),
		})
		if err != nil {
			return err
		}
		defer executor.Close()
		conf.Executor = executor
	}
	if len(cfg.MetricsAddr) > 0 {
		server := serveMetrics(cfg.MetricsAddr, registry, logger)
		defer server.Close()
	}
	s := scheduler.New(scheduler.NewRegistry(ds), conf)

	var errs *multierror.Error
	queries, err := submitAll(s, in, logger)
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- s.Run(runCtx)
	}()
	reporter := &reporter{out: out, reported: make(map[string]time.Time)}
	ticker := time.NewTicker(cfg.SnapshotInterval)
	defer ticker.Stop()
loop:
	for !finished(s, queries) {
		select {
		case <-ctx.Done():
			logger.Warnf("Interrupted with %d queries outstanding", len(queries))
			break loop
		case <-ticker.C:
			if err := reporter.report(queries, false); err != nil {
				errs = multierror.Append(errs, err)
				break loop
			}
		}
	}
	cancel()
	<-done
	if err := reporter.report(queries, true); err != nil {
		errs = multierror.Append(errs, err)
	}
	for _, q := range queries {
		if err := s.Failures(q.ID()); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", q.ID(), err))
		}
	}
	return errs.ErrorOrNil()
}

// submitAll submits each non-blank line of in as a query. Invalid submissions are logged and skipped.
func submitAll(s *scheduler.Scheduler, in io.Reader, logger *logging.Logger) ([]*query.Query, error) {
	var errs *multierror.Error
	queries := []*query.Query{}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		submission := bytes.TrimSpace(scanner.Bytes())
		if len(submission) == 0 {
			continue
		}
		q, err := s.Submit(submission)
		if err != nil {
			logger.Warnf("Skipping submission on line %d: %v", line, err)
			errs = multierror.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		queries = append(queries, q)
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return queries, errs.ErrorOrNil()
}

// finished returns true iff no query can make further progress
func finished(s *scheduler.Scheduler, queries []*query.Query) bool {
	for _, q := range queries {
		stalled := s.Pending(q.ID()) == 0 && s.InFlight(q.ID()) == 0 && s.Failures(q.ID()) != nil
		if !q.Done() && !stalled {
			return false
		}
	}
	return true
}

// reporter prints the snapshot of each query which progressed since it was last printed
type reporter struct {
	out      io.Writer
	reported map[string]time.Time
}

func (r *reporter) report(queries []*query.Query, all bool) error {
	for _, q := range queries {
		updated := q.LastUpdated()
		if last, ok := r.reported[q.ID()]; !all && (updated.IsZero() || (ok && !updated.After(last))) {
			continue
		}
		data, err := q.ToJSON()
		if err != nil {
			return err
		}
		if _, err := r.out.Write(append(data, '\n')); err != nil {
			return err
		}
		r.reported[q.ID()] = updated
	}
	return nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server failed: %v", err)
		}
	}()
	logger.Infof("Serving metrics on %s/metrics", addr)
	return server
}
