package algorithm

import (
	"crypto/md5"  //nolint:gosec // checksums, not signatures
	"crypto/sha1" //nolint:gosec // checksums, not signatures
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"hash/crc64"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/md4" //nolint:gosec // legacy algorithm kept for compatibility
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// ErrUnknown is returned when an algorithm name is not in the
// supported set.
var ErrUnknown = errors.New("unknown checksum algorithm")

// Spec binds a canonical algorithm name to a streaming hash
// constructor. Specs are immutable values obtained from Resolve.
type Spec struct {
	name    string
	size    int
	newHash func() hash.Hash
}

// Name returns the canonical algorithm name, e.g. "SHA-256".
func (s Spec) Name() string {
	return s.name
}

// Size returns the digest size in bytes. Hex digests are twice
// this length.
func (s Spec) Size() int {
	return s.size
}

// New returns a fresh hash accumulator for this algorithm.
func (s Spec) New() hash.Hash {
	return s.newHash()
}

// Ext returns the algorithm name as a filename-friendly
// extension: lowercase with separators removed, e.g. "sha256"
// for "SHA-256".
func (s Spec) Ext() string {
	return Ext(s.name)
}

// Ext normalizes an algorithm name into a filename-friendly
// extension: lowercase with "-" and "/" removed.
func Ext(name string) string {
	repl := strings.NewReplacer("-", "", "/", "")

	return repl.Replace(strings.ToLower(name))
}

// blake2bNew adapts the keyed blake2b constructors to the plain
// hash constructor shape. The constructors only fail for invalid
// key sizes, which cannot happen with a nil key.
func blake2bNew(
	ctor func(key []byte) (hash.Hash, error),
) func() hash.Hash {
	return func() hash.Hash {
		ha, err := ctor(nil)
		if err != nil {
			panic(fmt.Sprintf(
				"blake2b with nil key: %v", err,
			))
		}

		return ha
	}
}

//nolint:gochecknoglobals // fixed registry content
var supported = map[string]Spec{}

//nolint:gochecknoinits // registry is assembled once at startup
func init() {
	crc64Table := crc64.MakeTable(crc64.ECMA)

	for _, sp := range []Spec{
		{"CRC32", crc32.Size, func() hash.Hash {
			return crc32.NewIEEE()
		}},
		{"CRC64", crc64.Size, func() hash.Hash {
			return crc64.New(crc64Table)
		}},
		{"ADLER-32", adler32.Size, func() hash.Hash {
			return adler32.New()
		}},
		{"MD4", md4.Size, md4.New},
		{"MD5", md5.Size, md5.New},
		{"SHA-1", sha1.Size, sha1.New},
		{"SHA-224", sha256.Size224, sha256.New224},
		{"SHA-256", sha256.Size, sha256.New},
		{"SHA-384", sha512.Size384, sha512.New384},
		{"SHA-512", sha512.Size, sha512.New},
		{"SHA-512/224", sha512.Size224, sha512.New512_224},
		{"SHA-512/256", sha512.Size256, sha512.New512_256},
		{"SHA3-256", 32, func() hash.Hash {
			return sha3.New256()
		}},
		{"SHA3-512", 64, func() hash.Hash {
			return sha3.New512()
		}},
		{"RIPEMD-160", ripemd160.Size, ripemd160.New},
		{"BLAKE2B-256", blake2b.Size256, blake2bNew(blake2b.New256)},
		{"BLAKE2B-512", blake2b.Size, blake2bNew(blake2b.New512)},
	} {
		supported[sp.name] = sp
	}
}

// Resolve returns the Spec for the given canonical name. Name
// matching is case-insensitive. Returns ErrUnknown for names
// outside the supported set.
func Resolve(name string) (Spec, error) {
	sp, ok := supported[strings.ToUpper(name)]
	if !ok {
		return Spec{}, fmt.Errorf(
			"%w: %q", ErrUnknown, name,
		)
	}

	return sp, nil
}

// ResolveAll resolves a list of names, failing on the first
// unknown one. Resolution order follows the input order.
func ResolveAll(names []string) ([]Spec, error) {
	const errCtx = "resolving algorithms"

	specs := make([]Spec, 0, len(names))

	for _, name := range names {
		sp, err := Resolve(name)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		specs = append(specs, sp)
	}

	return specs, nil
}

// Names returns the canonical names of all supported
// algorithms, sorted.
func Names() []string {
	names := make([]string, 0, len(supported))

	for name := range supported {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
