package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/byte4ever/checksum/execution"
	"github.com/byte4ever/checksum/target"
)

// Run builds entities and targets from cfg and executes one
// checksum run. The returned Outcome carries all digests and
// failures; translating a failed outcome into an exit code is
// the caller's concern.
func Run(
	ctx context.Context,
	cfg Config,
) (*execution.Outcome, error) {
	const errCtx = "running checksums"

	entities := make(
		[]execution.Entity, 0, len(cfg.Files),
	)

	for _, fe := range cfg.Files {
		name := fe.Name
		if name == "" {
			name = filepath.Base(fe.Path)
		}

		entities = append(entities, execution.Entity{
			Name:       name,
			Path:       fe.Path,
			Classifier: fe.Classifier,
		})
	}

	policy := execution.ContinueOnError
	if cfg.FailOnError {
		policy = execution.FailFast
	}

	outcome, err := execution.Run(ctx, execution.Config{
		Algorithms:          cfg.Algorithms,
		Entities:            entities,
		Targets:             buildTargets(cfg),
		Policy:              policy,
		RequireZeroFailures: cfg.RequireZeroFailures,
		Parallelism:         cfg.Parallelism,
	})
	if err != nil {
		return outcome, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return outcome, nil
}

// buildTargets assembles the sink list from the configuration,
// in a fixed registration order: log, individual files, CSV,
// XML, JSON.
func buildTargets(cfg Config) []execution.Target {
	var targets []execution.Target

	if !cfg.Quiet {
		targets = append(targets, target.NewLog(nil))
	}

	if cfg.IndividualFiles {
		targets = append(targets, &target.File{
			OutputDir: resolveOutput(
				cfg,
				cfg.IndividualFilesOutputDirectory,
			),
			Encoding: cfg.Encoding,
		})
	}

	if cfg.CSVSummary {
		targets = append(targets, target.NewCSVSummary(
			resolveOutput(cfg, cfg.CSVSummaryFile),
			cfg.Algorithms,
			cfg.Encoding,
		))
	}

	if cfg.XMLSummary {
		targets = append(targets, target.NewXMLSummary(
			resolveOutput(cfg, cfg.XMLSummaryFile),
			cfg.Algorithms,
			cfg.Encoding,
		))
	}

	if cfg.JSONSummary {
		targets = append(targets, target.NewJSONSummary(
			resolveOutput(cfg, cfg.JSONSummaryFile),
			cfg.Algorithms,
			cfg.Encoding,
		))
	}

	return targets
}

// resolveOutput anchors a relative output path to the
// configured output directory. Absolute paths and empty values
// pass through unchanged.
func resolveOutput(cfg Config, path string) string {
	if path == "" ||
		cfg.OutputDirectory == "" ||
		filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(cfg.OutputDirectory, path)
}
