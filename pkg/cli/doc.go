// Package cli implements the protocheck command line.
//
// # Commands
//
//	protocheck check [paths...]   check files or directories (default .)
//	protocheck rules              list the built-in rules
//	protocheck watch [dir]        re-check on every .proto change
//	protocheck init [dir]         write a default protocheck.yaml
//
// # Exit Codes
//
// check exits with 1 when the outcome is failed: any error diagnostic, a
// file that could not be parsed or modeled, or a warning with
// --fail-on-warnings. Other errors (bad flags, unreadable files) exit
// with 2.
//
// # Configuration
//
// The project config (protocheck.yaml) is read from --config or from the
// first directory argument. Flags override the project config, which
// overrides defaults. Process settings such as log level, workers and
// timeouts come from PROTOCHECK_* environment variables (see pkg/config).
//
// # CI Integration
//
//	protocheck check proto/ --format github --fail-on-warnings
//
// # Watch Mode
//
//	protocheck watch proto/ --metrics-addr :9090
//
// serves /metrics, /healthz and /readyz while watching. Changes are
// debounced (PROTOCHECK_WATCH_DEBOUNCE) so that a burst of saves causes
// a single run.
package cli
