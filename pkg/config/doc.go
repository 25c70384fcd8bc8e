// Package config loads process configuration from environment variables.
//
// # Overview
//
// Rule selection and severities come from the project config file
// (protocheck.yaml, see pkg/linter). This package covers how the process
// runs: worker count, deadlines, the parse cache and logging. Command-line
// flags take precedence over these values.
//
// # Variables
//
//	PROTOCHECK_WORKERS="8"            # parallel parse and lint workers
//	PROTOCHECK_TIMEOUT="30s"          # run deadline, 0 disables
//	PROTOCHECK_CACHE_SIZE="1024"      # parsed files kept in memory
//	PROTOCHECK_CACHE_TTL="10m"        # 0 disables expiry
//	PROTOCHECK_WATCH_DEBOUNCE="200ms"
//	PROTOCHECK_SHUTDOWN_TIMEOUT="10s"
//	PROTOCHECK_LOG_LEVEL="warn"       # debug, info, warn, error
//	PROTOCHECK_LOG_FORMAT="text"      # text, json
//	PROTOCHECK_METRICS_ADDR=":9090"   # watch mode metrics and health
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
