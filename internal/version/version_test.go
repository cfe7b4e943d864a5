package version

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-builder/internal/service/common"
)

var errTestDescribe = errors.New("no names found")

// countingSource returns a fixed answer and counts calls.
type countingSource struct {
	answer string
	err    error
	calls  int
}

func (s *countingSource) Describe(context.Context) (string, error) {
	s.calls++

	return s.answer, s.err
}

// recordingRunner records commands and replies with a fixed output.
type recordingRunner struct {
	commands []common.Command
	output   string
}

func (r *recordingRunner) Run(_ context.Context, cmd common.Command) (string, error) {
	r.commands = append(r.commands, cmd)

	return r.output, nil
}

// TestFull ensures the builder's own version string carries its metadata.
func TestFull(t *testing.T) {
	t.Parallel()

	require.Contains(t, Full(), Version)
	require.Contains(t, Full(), Commit)
}

// TestResolver_Memoizes verifies the source is asked once per resolver.
func TestResolver_Memoizes(t *testing.T) {
	t.Parallel()

	source := &countingSource{answer: " v2.1.0-4-g1a2b3c4\n"}
	resolver := NewResolver(source)

	for range 3 {
		got, err := resolver.Resolve(context.Background())
		require.NoError(t, err)
		require.Equal(t, "v2.1.0-4-g1a2b3c4", got)
	}

	require.Equal(t, 1, source.calls)
}

// TestResolver_ErrorsAreNotCached verifies a failure is returned and retried next time.
func TestResolver_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	source := &countingSource{err: errTestDescribe}
	resolver := NewResolver(source)

	_, err := resolver.Resolve(context.Background())
	require.ErrorIs(t, err, errTestDescribe)

	source.err = nil
	_, err = resolver.Resolve(context.Background())
	require.ErrorIs(t, err, errEmptyVersion)

	source.answer = "v1.0.0"
	got, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1.0.0", got)
	require.Equal(t, 3, source.calls)
}

// TestCommandSource verifies the git invocation.
func TestCommandSource(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{output: "v3.0.0"}

	got, err := NewCommandSource(runner, "", "/src").Describe(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v3.0.0", got)
	require.Equal(t, []common.Command{{
		Name: "git",
		Args: []string{"describe", "--always", "--tags"},
		Dir:  "/src",
	}}, runner.commands)
}
