package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/byte4ever/checksum/algorithm"
	"github.com/byte4ever/checksum/digester"
)

// ErrInvalidConfiguration is returned when a run is started
// with an empty entity or algorithm list.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds all settings for one checksum run. Use a Config
// struct instead of many arguments.
type Config struct {
	// Algorithms is the ordered list of canonical algorithm
	// names to compute for every entity.
	Algorithms []string

	// Entities is the ordered list of byte sources to digest.
	// Processing and reporting follow this exact order.
	Entities []Entity

	// Targets receive results. Notification happens in input
	// order, finalization in registration order.
	Targets []Target

	// Policy selects fail-fast or continue-on-error handling.
	Policy Policy

	// RequireZeroFailures makes a continue-on-error run report
	// failure when any entity failed. Ignored under FailFast,
	// which always fails on error.
	RequireZeroFailures bool

	// Parallelism bounds concurrent entity digesting. Values
	// below 2 keep the run sequential. Target delivery order
	// is unaffected.
	Parallelism int
}

// engine carries the mutable state of one run. It is not
// reentrant; Run builds a fresh engine per invocation.
type engine struct {
	cfg     Config
	specs   []algorithm.Spec
	outcome *Outcome
}

// Run executes one checksum run: validates the configuration,
// digests every entity, feeds the targets, and finalizes them.
// The returned Outcome is non-nil whenever processing started,
// so partial results survive a fail-fast abort.
func Run(ctx context.Context, cfg Config) (*Outcome, error) {
	const errCtx = "running checksum execution"

	if len(cfg.Entities) == 0 {
		return nil, fmt.Errorf(
			"%s: %w: empty entity list",
			errCtx, ErrInvalidConfiguration,
		)
	}

	if len(cfg.Algorithms) == 0 {
		return nil, fmt.Errorf(
			"%s: %w: empty algorithm list",
			errCtx, ErrInvalidConfiguration,
		)
	}

	// A bad algorithm name fails the whole run here, before
	// any entity is touched, regardless of policy.
	specs, err := algorithm.ResolveAll(cfg.Algorithms)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	en := &engine{
		cfg:     cfg,
		specs:   specs,
		outcome: &Outcome{},
	}

	if cfg.Parallelism > 1 {
		err = en.runParallel(ctx)
	} else {
		err = en.runSequential(ctx)
	}

	if err != nil {
		en.abortTargets()

		return en.outcome, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	if err := en.finalizeTargets(); err != nil {
		return en.outcome, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	en.outcome.succeeded = len(en.outcome.Failures) == 0 ||
		!cfg.RequireZeroFailures

	return en.outcome, nil
}

// runSequential digests entities one by one in input order,
// notifying targets as each entity completes.
func (en *engine) runSequential(ctx context.Context) error {
	for _, entity := range en.cfg.Entities {
		if err := ctx.Err(); err != nil {
			return err
		}

		digests, err := digester.Digest(
			entity.Path, en.specs,
		)
		if err != nil {
			if en.cfg.Policy == FailFast {
				return fmt.Errorf(
					"entity %s: %w",
					entity.Name, err,
				)
			}

			en.recordFailure(entity, err)

			continue
		}

		en.recordResults(entity, digests)

		if err := en.notifyTargets(
			entity, digests,
		); err != nil {
			return err
		}
	}

	return nil
}

// runParallel digests entities concurrently with bounded
// parallelism. Completions are buffered per input index and
// delivered to targets strictly in input order, under a single
// mutex so no two goroutines mutate target state concurrently.
func (en *engine) runParallel(ctx context.Context) error {
	type completion struct {
		digests map[string]string
		err     error
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(en.cfg.Parallelism)

	var (
		mu      sync.Mutex
		next    int
		pending = make(map[int]completion)
	)

	// deliver flushes the contiguous prefix of completed
	// entities. Callers must hold mu.
	deliver := func() error {
		if err := gctx.Err(); err != nil {
			return err
		}

		for {
			cm, ok := pending[next]
			if !ok {
				return nil
			}

			delete(pending, next)

			entity := en.cfg.Entities[next]
			next++

			if cm.err != nil {
				en.recordFailure(entity, cm.err)

				continue
			}

			en.recordResults(entity, cm.digests)

			if err := en.notifyTargets(
				entity, cm.digests,
			); err != nil {
				return err
			}
		}
	}

	for idx, entity := range en.cfg.Entities {
		idx, entity := idx, entity
		grp.Go(func() error {
			// Stop picking up work once the group is
			// cancelled (fail-fast or caller cancel).
			if err := gctx.Err(); err != nil {
				return err
			}

			digests, err := digester.Digest(
				entity.Path, en.specs,
			)
			if err != nil && en.cfg.Policy == FailFast {
				return fmt.Errorf(
					"entity %s: %w",
					entity.Name, err,
				)
			}

			mu.Lock()
			defer mu.Unlock()

			pending[idx] = completion{
				digests: digests,
				err:     err,
			}

			return deliver()
		})
	}

	return grp.Wait()
}

// recordFailure records one failure per configured algorithm
// so failures and results together cover the full entity x
// algorithm cross product.
func (en *engine) recordFailure(entity Entity, err error) {
	for _, sp := range en.specs {
		slog.Warn(
			"checksum failed",
			"entity", entity.Name,
			"algorithm", sp.Name(),
			"error", err,
		)

		en.outcome.Failures = append(
			en.outcome.Failures,
			Failure{
				Entity:    entity,
				Algorithm: sp.Name(),
				Message:   err.Error(),
			},
		)
	}
}

// recordResults appends one Result per algorithm in configured
// algorithm order.
func (en *engine) recordResults(
	entity Entity,
	digests map[string]string,
) {
	for _, sp := range en.specs {
		en.outcome.Results = append(
			en.outcome.Results,
			Result{
				Entity:    entity,
				Algorithm: sp.Name(),
				Digest:    digests[sp.Name()],
			},
		)
	}
}

// notifyTargets feeds one completed entity to every target. A
// target error is a write failure and aborts the run whatever
// the policy: silently losing a configured output is worse
// than stopping.
func (en *engine) notifyTargets(
	entity Entity,
	digests map[string]string,
) error {
	for _, tg := range en.cfg.Targets {
		if err := tg.OnEntityDigested(
			entity, digests,
		); err != nil {
			return fmt.Errorf(
				"notifying target for %s: %w",
				entity.Name, err,
			)
		}
	}

	return nil
}

// finalizeTargets gives every target its single Finalize call
// in registration order. All targets are finalized even when
// an earlier one fails; the first error is reported.
func (en *engine) finalizeTargets() error {
	const errCtx = "finalizing targets"

	var firstErr error

	for _, tg := range en.cfg.Targets {
		if err := tg.Finalize(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return fmt.Errorf("%s: %w", errCtx, firstErr)
	}

	return nil
}

// abortTargets is the abort path: targets that can discard
// partial data do so, the rest are finalized so already
// buffered output is not lost mid-write.
func (en *engine) abortTargets() {
	for _, tg := range en.cfg.Targets {
		if di, ok := tg.(Discarder); ok {
			di.Discard()

			continue
		}

		if err := tg.Finalize(); err != nil {
			slog.Error(
				"finalizing target after abort",
				"error", err,
			)
		}
	}
}
