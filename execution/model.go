package execution

// Entity identifies one byte source to digest. Name is the
// logical name used in reports, Path locates the bytes, and
// Classifier optionally disambiguates entries sharing a name
// (e.g. artifact type).
type Entity struct {
	Name       string
	Path       string
	Classifier string
}

// Result records one successfully computed digest.
type Result struct {
	Entity    Entity
	Algorithm string
	Digest    string
}

// Failure records one (entity, algorithm) pair that could not
// be digested under the continue-on-error policy.
type Failure struct {
	Entity    Entity
	Algorithm string
	Message   string
}

// Outcome collects everything produced by one run. Results and
// Failures are disjoint and, for a completed continue-on-error
// run, together cover the full entity x algorithm cross
// product.
type Outcome struct {
	Results  []Result
	Failures []Failure

	succeeded bool
}

// Succeeded reports whether the run is considered successful
// under the configured policy.
func (o *Outcome) Succeeded() bool {
	return o.succeeded
}

// Target consumes digest results. OnEntityDigested is called
// once per successfully digested entity, in input order, with
// the digests keyed by canonical algorithm name. Finalize is
// called exactly once after the last entity, in target
// registration order.
type Target interface {
	OnEntityDigested(
		entity Entity,
		digests map[string]string,
	) error
	Finalize() error
}

// Discarder is an optional Target capability. When a fail-fast
// run aborts, targets implementing Discarder are told to drop
// partial data instead of being finalized.
type Discarder interface {
	Discard()
}

// Policy selects how the engine reacts to a digest error.
type Policy int

const (
	// FailFast aborts the run on the first error.
	FailFast Policy = iota

	// ContinueOnError records the failure and keeps
	// processing the remaining entities.
	ContinueOnError
)
