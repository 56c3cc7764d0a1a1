package runner

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// FileEntry names one file to digest. Name defaults to the
// file's base name when empty.
type FileEntry struct {
	Path       string `yaml:"path"`
	Name       string `yaml:"name"`
	Classifier string `yaml:"classifier"`
}

// Config holds all settings for a checksum run.
type Config struct {
	// Files lists the files to digest, in report order.
	Files []FileEntry `yaml:"files"`

	// Algorithms lists the checksum algorithms to compute.
	Algorithms []string `yaml:"algorithms"`

	// FailOnError aborts the run on the first error instead
	// of collecting failures and continuing.
	FailOnError bool `yaml:"failOnError"`

	// RequireZeroFailures makes a continue-on-error run
	// report failure when any file failed.
	RequireZeroFailures bool `yaml:"requireZeroFailures"`

	// Quiet suppresses the per-digest log output.
	Quiet bool `yaml:"quiet"`

	// Encoding is the IANA name of the text encoding for
	// generated files. Empty means UTF-8.
	Encoding string `yaml:"encoding"`

	// IndividualFiles writes one digest file per file and
	// algorithm.
	IndividualFiles bool `yaml:"individualFiles"`

	// IndividualFilesOutputDirectory overrides where digest
	// files are written. Empty writes them next to each
	// source file.
	IndividualFilesOutputDirectory string `yaml:"individualFilesOutputDirectory"`

	// CSVSummary writes a single CSV table of all digests.
	CSVSummary bool `yaml:"csvSummary"`

	// CSVSummaryFile is the CSV summary file name.
	CSVSummaryFile string `yaml:"csvSummaryFile"`

	// XMLSummary writes a single XML document of all digests.
	XMLSummary bool `yaml:"xmlSummary"`

	// XMLSummaryFile is the XML summary file name.
	XMLSummaryFile string `yaml:"xmlSummaryFile"`

	// JSONSummary writes a single JSON document of all
	// digests.
	JSONSummary bool `yaml:"jsonSummary"`

	// JSONSummaryFile is the JSON summary file name.
	JSONSummaryFile string `yaml:"jsonSummaryFile"`

	// OutputDirectory anchors relative summary file names and
	// the individual files output directory.
	OutputDirectory string `yaml:"outputDirectory"`

	// Parallelism bounds concurrent file digesting. Values
	// below 2 keep the run sequential.
	Parallelism int `yaml:"parallelism"`
}

// DefaultConfig returns the default run settings: MD5 and
// SHA-1 digests, fail on error, individual digest files plus a
// CSV summary.
func DefaultConfig() Config {
	return Config{
		Algorithms:      []string{"MD5", "SHA-1"},
		FailOnError:     true,
		IndividualFiles: true,
		CSVSummary:      true,
		CSVSummaryFile:  "files-checksums.csv",
		XMLSummaryFile:  "files-checksums.xml",
		JSONSummaryFile: "files-checksums.json",
	}
}

// LoadConfig reads a YAML run configuration. Keys absent from
// the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	const errCtx = "loading run configuration"

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Config{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return cfg, nil
}
