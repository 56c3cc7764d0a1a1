package execution_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/checksum/execution"
	"github.com/byte4ever/checksum/target"
)

// memoryTarget records notifications for assertions. It does
// not support discarding, so the abort path finalizes it.
type memoryTarget struct {
	entities     []string
	digests      []map[string]string
	finalized    int
	failNotify   bool
	failFinalize bool
}

func (mt *memoryTarget) OnEntityDigested(
	entity execution.Entity,
	digests map[string]string,
) error {
	if mt.failNotify {
		return errors.New("notify refused")
	}

	mt.entities = append(mt.entities, entity.Name)
	mt.digests = append(mt.digests, digests)

	return nil
}

func (mt *memoryTarget) Finalize() error {
	mt.finalized++

	if mt.failFinalize {
		return errors.New("finalize refused")
	}

	return nil
}

// discardTarget additionally supports dropping partial data on
// a fail-fast abort.
type discardTarget struct {
	memoryTarget

	discarded int
}

func (dt *discardTarget) Discard() {
	dt.discarded++
}

// writeEntities creates one readable file per name and returns
// matching entities. A name of "missing" maps to a path that
// does not exist.
func writeEntities(
	tb testing.TB,
	names ...string,
) []execution.Entity {
	tb.Helper()

	dir := tb.TempDir()

	entities := make([]execution.Entity, 0, len(names))

	for _, name := range names {
		pa := filepath.Join(dir, name)

		if name != "missing" {
			require.NoError(tb, os.WriteFile(
				pa, []byte("content of "+name), 0o600,
			))
		}

		entities = append(entities, execution.Entity{
			Name: name,
			Path: pa,
		})
	}

	return entities
}

func TestRun_empty_entity_list(t *testing.T) {
	t.Parallel()

	_, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5"},
		},
	)

	require.ErrorIs(
		t, err, execution.ErrInvalidConfiguration,
	)
}

func TestRun_empty_algorithm_list(t *testing.T) {
	t.Parallel()

	_, err := execution.Run(
		context.Background(),
		execution.Config{
			Entities: writeEntities(t, "a.txt"),
		},
	)

	require.ErrorIs(
		t, err, execution.ErrInvalidConfiguration,
	)
}

func TestRun_unknown_algorithm_fails_before_processing(
	t *testing.T,
) {
	t.Parallel()

	mt := &memoryTarget{}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5", "BOGUS"},
			Entities: writeEntities(
				t, "a.txt", "b.txt",
			),
			Targets: []execution.Target{mt},
			Policy:  execution.ContinueOnError,
		},
	)

	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Empty(t, mt.entities)
	assert.Zero(t, mt.finalized)
}

func TestRun_results_cover_entity_algorithm_product(
	t *testing.T,
) {
	t.Parallel()

	entities := writeEntities(t, "a.txt", "b.txt", "c.txt")
	algorithms := []string{"MD5", "SHA-1", "SHA-256"}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: algorithms,
			Entities:   entities,
		},
	)

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Empty(t, outcome.Failures)
	require.Len(
		t, outcome.Results,
		len(entities)*len(algorithms),
	)

	seen := make(map[[2]string]struct{})
	for _, res := range outcome.Results {
		seen[[2]string{
			res.Entity.Name, res.Algorithm,
		}] = struct{}{}

		assert.NotEmpty(t, res.Digest)
	}

	assert.Len(t, seen, len(entities)*len(algorithms))
}

func TestRun_fail_fast_stops_at_first_error(t *testing.T) {
	t.Parallel()

	entities := writeEntities(
		t, "a.txt", "missing", "c.txt",
	)

	mt := &memoryTarget{}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5"},
			Entities:   entities,
			Targets:    []execution.Target{mt},
			Policy:     execution.FailFast,
		},
	)

	require.Error(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Succeeded())

	// a.txt was digested before the abort; c.txt was never
	// reached, so it has neither a result nor a failure.
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, "a.txt", outcome.Results[0].Entity.Name)
	assert.Empty(t, outcome.Failures)
	assert.Equal(t, []string{"a.txt"}, mt.entities)
}

func TestRun_continue_on_error_records_failures(
	t *testing.T,
) {
	t.Parallel()

	entities := writeEntities(
		t, "a.txt", "missing", "c.txt",
	)
	algorithms := []string{"MD5", "SHA-1"}

	mt := &memoryTarget{}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: algorithms,
			Entities:   entities,
			Targets:    []execution.Target{mt},
			Policy:     execution.ContinueOnError,
		},
	)

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())

	// One failure per algorithm for the unreadable entity,
	// results for everything else.
	require.Len(t, outcome.Failures, len(algorithms))

	for _, fa := range outcome.Failures {
		assert.Equal(t, "missing", fa.Entity.Name)
		assert.NotEmpty(t, fa.Message)
	}

	require.Len(t, outcome.Results, 2*len(algorithms))
	assert.Equal(
		t, []string{"a.txt", "c.txt"}, mt.entities,
	)
	assert.Equal(t, 1, mt.finalized)
}

func TestRun_continue_with_require_zero_failures(
	t *testing.T,
) {
	t.Parallel()

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5"},
			Entities: writeEntities(
				t, "a.txt", "missing",
			),
			Policy:              execution.ContinueOnError,
			RequireZeroFailures: true,
		},
	)

	require.NoError(t, err)
	assert.False(t, outcome.Succeeded())
	require.Len(t, outcome.Failures, 1)
	require.Len(t, outcome.Results, 1)
}

func TestRun_notifies_targets_in_input_order(t *testing.T) {
	t.Parallel()

	entities := writeEntities(
		t, "z.txt", "a.txt", "m.txt",
	)

	mt := &memoryTarget{}

	_, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"SHA-256"},
			Entities:   entities,
			Targets:    []execution.Target{mt},
		},
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{"z.txt", "a.txt", "m.txt"},
		mt.entities,
	)
}

func TestRun_parallel_preserves_delivery_order(
	t *testing.T,
) {
	t.Parallel()

	names := []string{
		"e1", "e2", "e3", "e4", "e5",
		"e6", "e7", "e8", "e9", "e10",
	}
	entities := writeEntities(t, names...)

	mt := &memoryTarget{}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms:  []string{"SHA-256", "MD5"},
			Entities:    entities,
			Targets:     []execution.Target{mt},
			Parallelism: 4,
		},
	)

	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	assert.Equal(t, names, mt.entities)
	assert.Equal(t, 1, mt.finalized)
}

func TestRun_parallel_continue_on_error(t *testing.T) {
	t.Parallel()

	entities := writeEntities(
		t, "a.txt", "missing", "c.txt", "d.txt",
	)

	mt := &memoryTarget{}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms:  []string{"MD5"},
			Entities:    entities,
			Targets:     []execution.Target{mt},
			Policy:      execution.ContinueOnError,
			Parallelism: 3,
		},
	)

	require.NoError(t, err)
	require.Len(t, outcome.Failures, 1)
	require.Len(t, outcome.Results, 3)
	assert.Equal(
		t,
		[]string{"a.txt", "c.txt", "d.txt"},
		mt.entities,
	)
}

func TestRun_fail_fast_discards_discardable_targets(
	t *testing.T,
) {
	t.Parallel()

	dt := &discardTarget{}
	mt := &memoryTarget{}

	_, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5"},
			Entities: writeEntities(
				t, "a.txt", "missing",
			),
			Targets: []execution.Target{dt, mt},
			Policy:  execution.FailFast,
		},
	)

	require.Error(t, err)

	// The discardable target dropped its partial data; the
	// plain target was finalized with what it had.
	assert.Equal(t, 1, dt.discarded)
	assert.Zero(t, dt.finalized)
	assert.Equal(t, 1, mt.finalized)
}

func TestRun_target_write_failure_is_fatal(t *testing.T) {
	t.Parallel()

	bad := &memoryTarget{failNotify: true}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5"},
			Entities: writeEntities(
				t, "a.txt", "b.txt",
			),
			Targets: []execution.Target{bad},
			Policy:  execution.ContinueOnError,
		},
	)

	require.Error(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Succeeded())
}

func TestRun_sink_write_failure_kind_is_detectable(
	t *testing.T,
) {
	t.Parallel()

	ct := target.NewCSVSummary(
		filepath.Join(
			t.TempDir(), "absent-subdir", "sums.csv",
		),
		[]string{"MD5"},
		"",
	)

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5"},
			Entities:   writeEntities(t, "a.txt"),
			Targets:    []execution.Target{ct},
			Policy:     execution.ContinueOnError,
		},
	)

	require.ErrorIs(t, err, target.ErrWriteFailure)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Succeeded())
}

func TestRun_finalize_failure_fails_run(t *testing.T) {
	t.Parallel()

	bad := &memoryTarget{failFinalize: true}
	good := &memoryTarget{}

	outcome, err := execution.Run(
		context.Background(),
		execution.Config{
			Algorithms: []string{"MD5"},
			Entities:   writeEntities(t, "a.txt"),
			Targets: []execution.Target{
				bad, good,
			},
		},
	)

	require.Error(t, err)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Succeeded())

	// Every target still receives its Finalize call.
	assert.Equal(t, 1, bad.finalized)
	assert.Equal(t, 1, good.finalized)
}

func TestRun_cancelled_context_aborts(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(
		context.Background(),
	)
	cancel()

	mt := &memoryTarget{}

	_, err := execution.Run(ctx, execution.Config{
		Algorithms: []string{"MD5"},
		Entities:   writeEntities(t, "a.txt"),
		Targets:    []execution.Target{mt},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mt.entities)
}
