package digester

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/byte4ever/checksum/algorithm"
)

// Digest streams the file at path once and returns the
// lowercase hex digest for every requested algorithm, keyed by
// canonical algorithm name.
func Digest(
	path string,
	specs []algorithm.Spec,
) (result map[string]string, retErr error) {
	const errCtx = "digesting file"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			result = nil
			retErr = fmt.Errorf(
				"%s: %w", errCtx, closeErr,
			)
		}
	}()

	digests, err := DigestReader(fi, specs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return digests, nil
}

// DigestReader feeds all bytes from r through every requested
// algorithm in one pass and returns the lowercase hex digests
// keyed by canonical algorithm name.
func DigestReader(
	r io.Reader,
	specs []algorithm.Spec,
) (map[string]string, error) {
	const errCtx = "digesting stream"

	hashers := make([]hash.Hash, 0, len(specs))
	writers := make([]io.Writer, 0, len(specs))

	for _, sp := range specs {
		ha := sp.New()
		hashers = append(hashers, ha)
		writers = append(writers, ha)
	}

	if _, err := io.Copy(
		io.MultiWriter(writers...), r,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	digests := make(map[string]string, len(specs))

	for idx, sp := range specs {
		digests[sp.Name()] = hex.EncodeToString(
			hashers[idx].Sum(nil),
		)
	}

	return digests, nil
}
