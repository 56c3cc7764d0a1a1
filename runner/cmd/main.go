// Package main provides the checksum runner CLI. It digests
// the given files with the configured algorithms and reports
// through the configured outputs: log, per-file digest files,
// and CSV/XML/JSON summaries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/byte4ever/checksum/runner"
)

type sliceFlags []string

func (sf *sliceFlags) String() string {
	return fmt.Sprintf("%v", *sf)
}

func (sf *sliceFlags) Set(value string) error {
	*sf = append(*sf, value)

	return nil
}

// applyFlagOverrides layers explicitly-set CLI flags on top of
// a loaded configuration file. flagCfg holds the parsed flag
// values; set names the flags the user actually passed, so
// untouched flags keep the file's values instead of clobbering
// them with defaults.
func applyFlagOverrides(
	cfg runner.Config,
	flagCfg runner.Config,
	set map[string]bool,
) runner.Config {
	if set["fail-on-error"] {
		cfg.FailOnError = flagCfg.FailOnError
	}

	if set["quiet"] {
		cfg.Quiet = flagCfg.Quiet
	}

	if set["output-dir"] {
		cfg.OutputDirectory = flagCfg.OutputDirectory
	}

	if set["parallelism"] {
		cfg.Parallelism = flagCfg.Parallelism
	}

	return cfg
}

func run() error {
	const errCtx = "checksum runner"

	var (
		configFile string
		files      sliceFlags
		algorithms sliceFlags
	)

	flagCfg := runner.DefaultConfig()

	flag.StringVar(
		&configFile, "config", "",
		"YAML run configuration file path",
	)

	flag.Var(
		&files, "file",
		"file to digest (repeatable)",
	)

	flag.Var(
		&algorithms, "algorithm",
		"checksum algorithm name (repeatable, "+
			"default MD5 and SHA-1)",
	)

	flag.BoolVar(
		&flagCfg.FailOnError, "fail-on-error",
		flagCfg.FailOnError,
		"abort on the first error",
	)

	flag.BoolVar(
		&flagCfg.Quiet, "quiet", flagCfg.Quiet,
		"suppress per-digest log output",
	)

	flag.StringVar(
		&flagCfg.OutputDirectory, "output-dir",
		flagCfg.OutputDirectory,
		"base directory for generated files",
	)

	flag.IntVar(
		&flagCfg.Parallelism, "parallelism",
		flagCfg.Parallelism,
		"number of files digested concurrently",
	)

	flag.Parse()

	cfg := flagCfg

	if configFile != "" {
		loaded, err := runner.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		set := make(map[string]bool)

		flag.Visit(func(fl *flag.Flag) {
			set[fl.Name] = true
		})

		cfg = applyFlagOverrides(loaded, flagCfg, set)
	}

	for _, fp := range files {
		cfg.Files = append(
			cfg.Files,
			runner.FileEntry{Path: fp},
		)
	}

	if len(algorithms) > 0 {
		cfg.Algorithms = algorithms
	}

	outcome, err := runner.Run(
		context.Background(), cfg,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if !outcome.Succeeded() {
		return fmt.Errorf(
			"%s: %d checksums failed",
			errCtx, len(outcome.Failures),
		)
	}

	slog.Info(
		"checksum run complete",
		"digests", len(outcome.Results),
		"failures", len(outcome.Failures),
	)

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
