// Package checker is the entry point that ties the pipeline together.
//
// A run parses every source (through the optional parse cache), builds a
// schema.Set across all files, classifies presence and validation for
// each field, runs the enabled convention rules per file and aggregates
// the diagnostics into a report.Result. Parsing and linting fan out per
// file; the ordering of the result does not depend on the worker count.
//
//	c, err := checker.New(cfg, checker.WithWorkers(4), checker.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	result, err := c.CheckFiles(ctx, paths)
//	if err != nil {
//	    return err
//	}
//	if result.Failed() {
//	    os.Exit(1)
//	}
//
// A context deadline aborts the run with a wrapped context.DeadlineExceeded.
package checker
