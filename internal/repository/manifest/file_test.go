package manifest

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-builder/internal/domain/release"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(memfs.New(), "packaging/release-manifest.yaml")

	m, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, m)
	require.ErrorIs(t, repo.Save(context.Background(), nil), errManifestIsNotSet)
}

// TestFileRepository_SaveLoad ensures Save followed by Load returns the same manifest.
func TestFileRepository_SaveLoad(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	repo := NewFileRepository(fs, "packaging/release-manifest.yaml")

	want := &release.Manifest{
		Version: "v1.2.3",
		Packages: []release.Artifact{{
			File:     "amonagent_v1.2.3_i386.deb",
			Format:   release.FormatDEB,
			Size:     42,
			Checksum: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		}},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	raw, err := util.ReadFile(fs, "packaging/release-manifest.yaml")
	require.NoError(t, err)
	require.Contains(t, string(raw), "blake3: af1349b9")
}

// TestFileRepository_BadYAML surfaces decode errors.
func TestFileRepository_BadYAML(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "m.yaml", []byte("packages: {"), 0o644))

	_, err := NewFileRepository(fs, "m.yaml").Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
