package packager

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"lukechampine.com/blake3"

	"github.com/oshokin/release-builder/internal/domain/release"
	"github.com/oshokin/release-builder/internal/logger"
)

// checksumSize is the BLAKE3 digest size in bytes.
const checksumSize = 32

// Snapshot maps every package of the given formats found directly in dir
// to its checksum. A missing dir yields an empty snapshot.
func Snapshot(fs billy.Filesystem, dir string, formats []release.Format) (map[string]string, error) {
	entries, err := fs.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}

	if err != nil {
		return nil, fmt.Errorf("list packages in %s: %w", dir, err)
	}

	checksums := make(map[string]string, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if _, found := formatOf(entry.Name(), formats); !found {
			continue
		}

		checksum, err := FileChecksum(fs, fs.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		checksums[entry.Name()] = checksum
	}

	return checksums, nil
}

// Changed returns the packages in dir that are missing from before or
// whose content differs from it, sorted by name.
func Changed(fs billy.Filesystem, dir string, formats []release.Format, before map[string]string) ([]string, error) {
	after, err := Snapshot(fs, dir, formats)
	if err != nil {
		return nil, err
	}

	var names []string

	for name, checksum := range after {
		if previous, found := before[name]; !found || previous != checksum {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names, nil
}

// Collect hashes the named packages in dir. Names of other formats are skipped.
func Collect(fs billy.Filesystem, dir, version string, files []string, formats []release.Format) (*release.Manifest, error) {
	names := slices.Clone(files)
	slices.Sort(names)
	names = slices.Compact(names)

	manifest := &release.Manifest{
		Version:  version,
		Packages: make([]release.Artifact, 0, len(names)),
	}

	for _, name := range names {
		format, found := formatOf(name, formats)
		if !found {
			continue
		}

		fullPath := fs.Join(dir, name)

		info, err := fs.Stat(fullPath)
		if err != nil {
			return nil, fmt.Errorf("stat package %s: %w", fullPath, err)
		}

		checksum, err := FileChecksum(fs, fullPath)
		if err != nil {
			return nil, err
		}

		manifest.Packages = append(manifest.Packages, release.Artifact{
			File:     name,
			Format:   format,
			Size:     info.Size(),
			Checksum: checksum,
		})
	}

	return manifest, nil
}

// FileChecksum returns the hex BLAKE3-256 digest of path.
func FileChecksum(fs billy.Filesystem, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := blake3.New(checksumSize, nil)
	if _, err = io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("calculate checksum of %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// LogSummary logs the produced files, one per line.
func LogSummary(ctx context.Context, dir string, manifest *release.Manifest) {
	var builder strings.Builder

	builder.WriteString("Release ")
	builder.WriteString(manifest.Version)
	builder.WriteString(" produced the following packages in ")
	builder.WriteString(dir)
	builder.WriteString(":")

	for _, artifact := range manifest.Packages {
		builder.WriteString("\n")
		builder.WriteString(artifact.File)
		builder.WriteString(" blake3:")
		builder.WriteString(artifact.Checksum)
	}

	logger.Info(ctx, builder.String())
}

func formatOf(name string, formats []release.Format) (release.Format, bool) {
	for _, format := range formats {
		if strings.HasSuffix(name, format.Extension()) {
			return format, true
		}
	}

	return "", false
}
