package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/protocheck/pkg/cache"
	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/observability"
	"github.com/platinummonkey/protocheck/pkg/report"
)

func newWatchCommand(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check proto files whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if metricsAddr == "" {
				metricsAddr = root.env.Observability.MetricsAddr
			}
			return runWatch(cmd, root, opts, dir, metricsAddr)
		},
	}

	addCheckFlags(cmd, opts)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics, /healthz and /readyz on this address (env PROTOCHECK_METRICS_ADDR)")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *checkOptions, dir, metricsAddr string) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := root.lintConfig(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	health := observability.NewHealthChecker()

	c, err := newChecker(cmd, root, cfg, opts,
		checker.WithMetrics(metrics),
		checker.WithCache(cache.NewParseCache(&root.env.Cache)),
	)
	if err != nil {
		return err
	}

	var server *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		observability.RegisterMetricsEndpoint(mux, registry)
		health.RegisterHealthEndpoints(mux)
		server = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			root.logger.WithField("addr", metricsAddr).Info("serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				root.logger.WithError(err).Error("metrics server failed")
			}
		}()
	}

	w := &watcher{
		root:     dir,
		checker:  c,
		logger:   root.logger,
		debounce: root.env.Watch.Debounce,
		timeout:  root.env.Runtime.Timeout,
		out:      cmd.OutOrStdout(),
		format:   format,
		verbose:  opts.verbose,
		onResult: func(result *report.Result) {
			health.RecordRun(observability.RunStatus{
				Outcome:     string(result.Outcome),
				Files:       len(result.Files),
				Diagnostics: len(result.Diagnostics),
				FinishedAt:  time.Now(),
			})
		},
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
		cancel()
	}()

	sm := observability.NewShutdownManager(root.logger, server, root.env.Watch.ShutdownTimeout)
	sm.RegisterShutdownFunc(func(shutdownCtx context.Context) error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-shutdownCtx.Done():
			return shutdownCtx.Err()
		}
	})
	return sm.WaitForShutdown(ctx)
}

// watcher re-runs the checker over a directory tree after .proto files
// change. Bursts of events within the debounce window cause one run.
type watcher struct {
	root     string
	checker  *checker.Checker
	logger   *logrus.Logger
	debounce time.Duration
	timeout  time.Duration
	out      io.Writer
	format   report.Format
	verbose  bool
	onResult func(*report.Result)
}

// Run checks once, then again on every change until ctx is done
func (w *watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addDirs(fsw, w.root); err != nil {
		return err
	}
	w.logger.WithField("dir", w.root).Info("watching for changes")

	w.runOnce(ctx)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err := w.addDirs(fsw, event.Name); err != nil {
						w.logger.WithError(err).WithField("dir", event.Name).Warn("failed to watch new directory")
					}
					continue
				}
			}
			if filepath.Ext(event.Name) != ".proto" || (event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write)) {
				continue
			}
			w.logger.WithFields(logrus.Fields{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("proto file changed")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			trigger = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("watcher error")

		case <-trigger:
			trigger = nil
			w.runOnce(ctx)
		}
	}
}

// runOnce runs one check and writes its report; failures are logged so
// the watch loop keeps going
func (w *watcher) runOnce(ctx context.Context) {
	defer observability.RecoverPanic(w.logger, "watch run")

	files, err := findProtoFiles([]string{w.root})
	if err != nil {
		w.logger.WithError(err).Error("failed to find proto files")
		return
	}
	if len(files) == 0 {
		w.logger.WithField("dir", w.root).Info("no proto files found")
		return
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	result, err := w.checker.CheckFiles(ctx, files)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.WithError(err).Error("check failed")
		}
		return
	}

	if err := report.Write(w.out, result, w.format, report.WriteOptions{Verbose: w.verbose}); err != nil {
		w.logger.WithError(err).Error("failed to write report")
	}
	if w.onResult != nil {
		w.onResult(result)
	}
}

// addDirs watches dir and every directory below it
func (w *watcher) addDirs(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
