package stager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/oshokin/release-builder/internal/domain/release"
	"github.com/oshokin/release-builder/internal/logger"
)

// DefaultDirMode is the mode of staged directories.
const DefaultDirMode os.FileMode = 0o755

// Stager materializes a release.Layout on a filesystem.
type Stager struct {
	fs      billy.Filesystem
	layout  release.Layout
	sources release.Sources
}

// New creates a Stager. Paths in layout and sources are relative to fs.
func New(fs billy.Filesystem, layout release.Layout, sources release.Sources) *Stager {
	return &Stager{
		fs:      fs,
		layout:  layout,
		sources: sources,
	}
}

// Stage deletes the staging root and recreates it from the sources.
//
// Nothing is rolled back on failure; the next Stage starts by deleting
// whatever was left.
func (s *Stager) Stage(ctx context.Context) error {
	ctx = logger.WithName(ctx, "stager")

	if err := util.RemoveAll(s.fs, s.layout.Root); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove staging root %s: %w", s.layout.Root, err)
	}

	l, src := s.layout, s.sources

	dirs := l.Directories()
	steps := make([]func() error, 0, len(dirs)+5)

	for _, dir := range dirs {
		steps = append(steps, s.mkdir(dir))
	}

	steps = append(steps,
		s.copy(src.Binary, l.InstalledBinary()),
		s.copy(src.Binary, l.ConvenienceBinary()),
		s.copy(src.Tmpfiles(), l.TmpfilesFile()),
		// Both land on the same name; the unit file overwrites the init script.
		s.copy(src.InitScript(), l.ServiceFile()),
		s.copy(src.ServiceUnit(), l.ServiceFile()),
	)

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Staged package tree", "root", l.Root, "steps", len(steps))

	return nil
}

func (s *Stager) mkdir(dir string) func() error {
	return func() error {
		if err := s.fs.MkdirAll(dir, DefaultDirMode); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}

		return nil
	}
}

// copy returns a step copying content only; the mode bits of src are not kept.
func (s *Stager) copy(src, dst string) func() error {
	return func() error {
		if err := copyFile(s.fs, src, dst); err != nil {
			return fmt.Errorf("copy %s to %s: %w", src, dst, err)
		}

		return nil
	}
}

func copyFile(fs billy.Filesystem, src, dst string) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := fs.Create(dst)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)

	return err
}
