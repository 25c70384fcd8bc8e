package cli

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/protocheck/pkg/config"
	"github.com/platinummonkey/protocheck/pkg/linter"
	"github.com/platinummonkey/protocheck/pkg/observability"
)

// ErrCheckFailed is returned by the check command when the outcome is
// failed. The diagnostics have already been written.
var ErrCheckFailed = errors.New("check failed")

// rootOptions holds state shared by every subcommand
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	env    *config.Config
	logger *logrus.Logger
}

// NewRootCommand creates the root command with every subcommand attached
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "protocheck",
		Short:         "protocheck checks protobuf schemas against conventions",
		Long:          "protocheck parses .proto files and reports naming, documentation, presence, type mapping and validation placement problems.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to protocheck.yaml (default: searched in the first directory argument)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (env PROTOCHECK_LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text, json (env PROTOCHECK_LOG_FORMAT)")

	root.AddCommand(
		newCheckCommand(opts),
		newRulesCommand(opts),
		newWatchCommand(opts),
		newInitCommand(opts),
	)

	return root
}

// init loads environment config and builds the logger. Flags win over
// the environment.
func (o *rootOptions) init(cmd *cobra.Command) error {
	env, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		env.Observability.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		env.Observability.LogFormat = o.logFormat
	}

	logger, err := observability.NewLogger(env.Observability.LogLevel, env.Observability.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	o.env = env
	o.logger = logger
	return nil
}

// lintConfig loads the project config from --config or from dir
func (o *rootOptions) lintConfig(dir string) (*linter.Config, error) {
	if o.configPath != "" {
		return linter.LoadConfig(o.configPath)
	}
	return linter.LoadConfigFromDir(dir)
}
