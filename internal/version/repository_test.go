package version

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// testRepo wraps a throwaway repository with deterministic commit times.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	when time.Time
	n    int
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	return &testRepo{
		t:    t,
		dir:  dir,
		repo: repo,
		when: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) signature() *object.Signature {
	return &object.Signature{Name: "Release Bot", Email: "release@example.com", When: r.when}
}

// commit writes a new file and commits it one minute after the previous commit.
func (r *testRepo) commit() plumbing.Hash {
	r.t.Helper()

	r.n++
	r.when = r.when.Add(time.Minute)

	name := "file-" + strconv.Itoa(r.n)
	require.NoError(r.t, os.WriteFile(filepath.Join(r.dir, name), []byte(name), 0o600))

	worktree, err := r.repo.Worktree()
	require.NoError(r.t, err)

	_, err = worktree.Add(name)
	require.NoError(r.t, err)

	hash, err := worktree.Commit("commit "+name, &git.CommitOptions{Author: r.signature()})
	require.NoError(r.t, err)

	return hash
}

// TestRepositorySource_NoTags falls back to the abbreviated hash.
func TestRepositorySource_NoTags(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	head := repo.commit()

	got, err := NewRepositorySource(repo.dir).Describe(context.Background())
	require.NoError(t, err)
	require.Equal(t, head.String()[:7], got)
}

// TestRepositorySource_ExactTag returns the bare tag when HEAD is tagged.
func TestRepositorySource_ExactTag(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	repo.commit()
	head := repo.commit()

	_, err := repo.repo.CreateTag("v1.4.0", head, nil)
	require.NoError(t, err)

	got, err := NewRepositorySource(repo.dir).Describe(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1.4.0", got)
}

// TestRepositorySource_DistanceFromAnnotatedTag counts commits past a peeled annotated tag.
func TestRepositorySource_DistanceFromAnnotatedTag(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	tagged := repo.commit()

	_, err := repo.repo.CreateTag("v0.9.0", tagged, &git.CreateTagOptions{
		Tagger:  repo.signature(),
		Message: "release v0.9.0",
	})
	require.NoError(t, err)

	repo.commit()
	head := repo.commit()

	sub := filepath.Join(repo.dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o700))

	got, err := NewRepositorySource(sub).Describe(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v0.9.0-2-g"+head.String()[:7], got)
}

// TestRepositorySource_NotARepository reports an error outside a repository.
func TestRepositorySource_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := NewRepositorySource(t.TempDir()).Describe(context.Background())
	require.Error(t, err)
}
