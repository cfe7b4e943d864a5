package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// shortHashLength matches git's default abbreviation.
const shortHashLength = 7

// RepositorySource describes HEAD without a git executable.
//
// History is walked from HEAD in committer-time order until the first tagged
// commit; the walked count is the distance. This agrees with git describe on
// linear histories.
type RepositorySource struct {
	path string
}

// NewRepositorySource creates a source for the repository containing path.
func NewRepositorySource(path string) *RepositorySource {
	return &RepositorySource{
		path: path,
	}
}

// Describe implements Source.
func (s *RepositorySource) Describe(ctx context.Context) (string, error) {
	repo, err := git.PlainOpenWithOptions(s.path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository %s: %w", s.path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	tags, err := tagsByCommit(repo)
	if err != nil {
		return "", err
	}

	commits, err := repo.Log(&git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return "", fmt.Errorf("walk history: %w", err)
	}
	defer commits.Close()

	var (
		nearest  string
		distance int
	)

	err = commits.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if name, found := tags[c.Hash]; found {
			nearest = name
			return storer.ErrStop
		}

		distance++

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk history: %w", err)
	}

	short := head.Hash().String()[:shortHashLength]

	switch {
	case nearest == "":
		return short, nil
	case distance == 0:
		return nearest, nil
	default:
		return fmt.Sprintf("%s-%d-g%s", nearest, distance, short), nil
	}
}

// tagsByCommit maps each tagged commit to a tag name, peeling annotated tags.
// When several tags point at one commit the greatest name wins.
func tagsByCommit(repo *git.Repository) (map[plumbing.Hash]string, error) {
	refs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	result := make(map[plumbing.Hash]string)

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()

		tag, tagErr := repo.TagObject(target)

		switch {
		case tagErr == nil:
			commit, commitErr := tag.Commit()
			if commitErr != nil {
				// Tags on trees or blobs cannot describe a commit.
				return nil //nolint:nilerr // Skipping non-commit tags.
			}

			target = commit.Hash
		case !errors.Is(tagErr, plumbing.ErrObjectNotFound):
			return fmt.Errorf("read tag %s: %w", ref.Name().Short(), tagErr)
		}

		name := ref.Name().Short()
		if existing, found := result[target]; !found || name > existing {
			result[target] = name
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
