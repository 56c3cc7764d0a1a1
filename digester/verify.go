package digester

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/byte4ever/checksum/algorithm"
)

// StoredDigest reads a digest previously written for path by
// the per-file output (path plus the algorithm extension, e.g.
// "lib.jar.sha256"). Returns empty string with no error if the
// digest file does not exist. Both the bare-digest and the
// coreutils "digest  filename" forms are accepted.
func StoredDigest(
	path string,
	sp algorithm.Spec,
) (string, error) {
	const errCtx = "reading stored digest"

	dp := path + "." + sp.Ext()

	if _, err := os.Stat(dp); errors.Is(
		err, os.ErrNotExist,
	) {
		return "", nil
	}

	content, err := os.ReadFile(dp) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	fields := strings.Fields(string(content))
	if len(fields) == 0 {
		return "", nil
	}

	return fields[0], nil
}

// Verify compares the computed digest of the file at path
// against its stored digest file.
func Verify(
	path string,
	sp algorithm.Spec,
) (bool, error) {
	const errCtx = "verifying digest"

	computed, err := Digest(path, []algorithm.Spec{sp})
	if err != nil {
		return false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	stored, err := StoredDigest(path, sp)
	if err != nil {
		return false, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return stored != "" &&
		computed[sp.Name()] == stored, nil
}
