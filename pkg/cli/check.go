package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/report"
)

type checkOptions struct {
	format         string
	failOnWarnings bool
	verbose        bool
	ruleSets       []string
	strictness     string
	workers        int
}

func newCheckCommand(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check proto files and report diagnostics",
		Long: `Checks every .proto file under the given files or directories
(default: the current directory). Exits with status 1 when the outcome
is failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts, args)
		},
	}

	addCheckFlags(cmd, opts)
	return cmd
}

// addCheckFlags registers the flags shared by check and watch
func addCheckFlags(cmd *cobra.Command, opts *checkOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "o", string(report.FormatText), "output format: text, json, github")
	flags.BoolVar(&opts.failOnWarnings, "fail-on-warnings", false, "treat warnings as failures")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "show suggested fixes")
	flags.StringSliceVar(&opts.ruleSets, "rules", nil, "rule sets to run, e.g. naming,presence (default: all)")
	flags.StringVar(&opts.strictness, "strictness", "", "documentation strictness: lenient, strict")
	flags.IntVarP(&opts.workers, "workers", "j", 0, "parallel workers (env PROTOCHECK_WORKERS)")
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := root.lintConfig(configDir(args))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	c, err := newChecker(cmd, root, cfg, opts)
	if err != nil {
		return err
	}

	files, err := findProtoFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "No proto files found in %v\n", args)
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := root.env.Runtime.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := c.CheckFiles(ctx, files)
	if err != nil {
		return err
	}

	if err := report.Write(cmd.OutOrStdout(), result, format, report.WriteOptions{Verbose: opts.verbose}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if result.Failed() {
		return ErrCheckFailed
	}
	return nil
}

// newChecker applies flags on top of the file config
func newChecker(cmd *cobra.Command, root *rootOptions, cfg *linter.Config, opts *checkOptions, extra ...checker.Option) (*checker.Checker, error) {
	workers := root.env.Runtime.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	checkerOpts := []checker.Option{
		checker.WithLogger(root.logger),
		checker.WithWorkers(workers),
	}
	if cmd.Flags().Changed("fail-on-warnings") {
		checkerOpts = append(checkerOpts, checker.WithFailOnWarnings(opts.failOnWarnings))
	}
	if len(opts.ruleSets) > 0 {
		checkerOpts = append(checkerOpts, checker.WithRuleSet(opts.ruleSets...))
	}
	if opts.strictness != "" {
		strictness, err := linter.ParseStrictness(opts.strictness)
		if err != nil {
			return nil, err
		}
		checkerOpts = append(checkerOpts, checker.WithDocStrictness(strictness))
	}

	return checker.New(cfg, append(checkerOpts, extra...)...)
}
