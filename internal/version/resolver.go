package version

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oshokin/release-builder/internal/service/common"
)

// errEmptyVersion is returned when a source yields an empty string.
var errEmptyVersion = errors.New("version source returned an empty version")

// Source derives a version string from repository history.
type Source interface {
	// Describe returns "tag", "tag-N-g<hash>" or "<hash>" when no tag is reachable.
	Describe(ctx context.Context) (string, error)
}

// Resolver memoizes the first version a Source produces.
type Resolver struct {
	source Source

	mu      sync.Mutex
	version string
}

// NewResolver creates a Resolver backed by source.
func NewResolver(source Source) *Resolver {
	return &Resolver{
		source: source,
	}
}

// Resolve returns the cached version or asks the source for it.
// Failures are not cached.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.version != "" {
		return r.version, nil
	}

	described, err := r.source.Describe(ctx)
	if err != nil {
		return "", fmt.Errorf("describe version: %w", err)
	}

	described = strings.TrimSpace(described)
	if described == "" {
		return "", errEmptyVersion
	}

	r.version = described

	return r.version, nil
}

// CommandSource runs the git executable through a Runner.
type CommandSource struct {
	runner common.Runner
	git    string
	dir    string
}

// NewCommandSource creates a source running `<git> describe --always --tags` in dir.
func NewCommandSource(runner common.Runner, git, dir string) *CommandSource {
	if git == "" {
		git = "git"
	}

	return &CommandSource{
		runner: runner,
		git:    git,
		dir:    dir,
	}
}

// Describe implements Source.
func (s *CommandSource) Describe(ctx context.Context) (string, error) {
	return s.runner.Run(ctx, common.Command{
		Name: s.git,
		Args: []string{"describe", "--always", "--tags"},
		Dir:  s.dir,
	})
}
