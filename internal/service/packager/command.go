package packager

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/oshokin/release-builder/internal/domain/release"
	"github.com/oshokin/release-builder/internal/logger"
	"github.com/oshokin/release-builder/internal/service/common"
)

// createdPackagePattern matches the path fpm reports in its "Created package" line.
var createdPackagePattern = regexp.MustCompile(`:path=>"([^"]+)"`)

// Options configures the packager invocation. Paths are absolute OS paths.
type Options struct {
	// FPM is the packaging tool executable.
	FPM string
	// StagingRoot is the payload directory passed to --chdir.
	StagingRoot string
	// OutputDir is the working directory, where fpm writes packages.
	OutputDir string
	// PostInstall, PostUninstall and PreUninstall are lifecycle script paths.
	PostInstall   string
	PostUninstall string
	PreUninstall  string
	// Metadata is shared by every package of the release.
	Metadata release.Metadata
}

// Builder invokes the packaging tool through a Runner.
type Builder struct {
	runner common.Runner
	opts   Options
}

// NewBuilder creates a Builder.
func NewBuilder(runner common.Runner, opts Options) *Builder {
	if opts.FPM == "" {
		opts.FPM = "fpm"
	}

	return &Builder{
		runner: runner,
		opts:   opts,
	}
}

// Spec assembles the package spec for one invocation.
func (b *Builder) Spec(arch release.Architecture, format release.Format, version string) release.PackageSpec {
	return release.PackageSpec{
		Arch:     arch,
		Format:   format,
		Version:  version,
		Metadata: b.opts.Metadata,
	}
}

// Args renders the ordered fpm arguments for spec.
// The architecture is the packaging-facing name, never the toolchain one.
func (b *Builder) Args(spec release.PackageSpec) []string {
	meta := spec.Metadata

	args := []string{
		"--epoch", strconv.Itoa(meta.Epoch),
		"--force",
		"--input-type", "dir",
		"--output-type", spec.Format.String(),
		"--chdir", b.opts.StagingRoot,
		"--maintainer", meta.Maintainer,
		"--url", meta.URL,
		"--description", meta.Description,
		"--version", spec.Version,
		"--conflicts", spec.Conflicts(),
		"--vendor", meta.Vendor,
		"--name", meta.Name,
	}

	for _, dependency := range meta.Depends {
		args = append(args, "--depends", dependency)
	}

	return append(args,
		"--architecture", spec.Arch.Name,
		"--post-install", b.opts.PostInstall,
		"--post-uninstall", b.opts.PostUninstall,
		"--pre-uninstall", b.opts.PreUninstall,
		// Payload: everything under --chdir.
		".",
	)
}

// Build runs the packaging tool once for arch and format and returns the
// file name fpm reported, or "" when its output named none.
func (b *Builder) Build(
	ctx context.Context,
	arch release.Architecture,
	format release.Format,
	version string,
) (string, error) {
	ctx = logger.WithName(ctx, "packager")

	logger.InfoKV(ctx, "Building package", "arch", arch.Name, "format", format)

	output, err := b.runner.Run(ctx, common.Command{
		Name: b.opts.FPM,
		Args: b.Args(b.Spec(arch, format, version)),
		Dir:  b.opts.OutputDir,
	})
	if err != nil {
		return "", fmt.Errorf("package %s/%s: %w", arch.Name, format, err)
	}

	return createdPackage(output), nil
}

// createdPackage extracts the last reported package name from fpm output.
func createdPackage(output string) string {
	matches := createdPackagePattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return ""
	}

	return filepath.Base(matches[len(matches)-1][1])
}
