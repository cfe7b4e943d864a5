package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/oshokin/release-builder/internal/config"
	"github.com/oshokin/release-builder/internal/domain/release"
	"github.com/oshokin/release-builder/internal/logger"
	"github.com/oshokin/release-builder/internal/repository/manifest"
	"github.com/oshokin/release-builder/internal/service/common"
	"github.com/oshokin/release-builder/internal/service/compiler"
	"github.com/oshokin/release-builder/internal/service/packager"
	"github.com/oshokin/release-builder/internal/service/stager"
	"github.com/oshokin/release-builder/internal/version"
)

// Options contains inputs for the release entry point.
type Options struct {
	// ConfigPath is the settings file; a missing file means defaults.
	ConfigPath string
	// Runner executes external tools. Defaults to a process runner.
	Runner common.Runner
	// FS is the project filesystem. Defaults to the project root on disk.
	FS billy.Filesystem
}

// pipeline holds the wired components for one run.
type pipeline struct {
	cfg       *config.Config
	fs        billy.Filesystem
	resolver  *version.Resolver
	compiler  *compiler.Compiler
	stager    *stager.Stager
	builder   *packager.Builder
	manifests manifest.Repository
}

// Run executes the release workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "release-builder")

	if opts == nil {
		opts = new(Options)
	}

	cfg, err := loadSettings(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	if err = common.EnsureSingleInstance(); err != nil {
		return err
	}

	p, err := newPipeline(cfg, opts)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	if err = p.Run(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Release build completed successfully")

	return nil
}

// loadSettings reads the settings file, writing the defaults there first
// when it does not exist yet.
func loadSettings(ctx context.Context, configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if _, err = os.Stat(configPath); !errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if err = config.Save(configPath, cfg); err != nil {
		return nil, fmt.Errorf("save default settings: %w", err)
	}

	logger.InfoKV(ctx, "Wrote default settings", "path", configPath)

	return cfg, nil
}

// newPipeline wires the components from the settings.
func newPipeline(cfg *config.Config, opts *Options) (*pipeline, error) {
	root, err := cfg.OnDisk(".")
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = common.NewExecRunner()
	}

	fs := opts.FS
	if fs == nil {
		fs = osfs.New(root)
	}

	var (
		layout  = cfg.Layout()
		sources = cfg.Sources()
		onDisk  = func(rel string) string {
			return filepath.Join(root, filepath.FromSlash(rel))
		}
	)

	var source version.Source = version.NewCommandSource(runner, cfg.Tools.Git, root)
	if cfg.VersionSource == config.VersionSourceGoGit {
		source = version.NewRepositorySource(root)
	}

	return &pipeline{
		cfg:      cfg,
		fs:       fs,
		resolver: version.NewResolver(source),
		compiler: compiler.New(runner, compiler.Options{
			GoTool:        cfg.Tools.Go,
			Output:        sources.Binary,
			Main:          cfg.Paths.Main,
			VersionSymbol: cfg.VersionSymbol,
			Dir:           root,
		}),
		stager: stager.New(fs, layout, sources),
		builder: packager.NewBuilder(runner, packager.Options{
			FPM:           cfg.Tools.FPM,
			StagingRoot:   onDisk(layout.Root),
			OutputDir:     onDisk(outputDir(layout)),
			PostInstall:   onDisk(sources.PostInstall()),
			PostUninstall: onDisk(sources.PostUninstall()),
			PreUninstall:  onDisk(sources.PreUninstall()),
			Metadata:      cfg.Project,
		}),
		manifests: manifest.NewFileRepository(fs, cfg.Paths.Manifest),
	}, nil
}

// outputDir is where the packaging tool leaves packages: the staging root's parent.
func outputDir(layout release.Layout) string {
	return path.Dir(layout.Root)
}

// Run drives every architecture through compile, stage and package steps.
func (p *pipeline) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Starting release build",
		"builder", version.Full(),
		"package", p.cfg.Project.Name,
		"architectures", len(p.cfg.Architectures),
		"formats", p.cfg.Formats)

	if err := p.checkSources(); err != nil {
		return err
	}

	releaseVersion, err := p.resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Resolved release version", "version", releaseVersion)

	dir := outputDir(p.cfg.Layout())

	before, err := packager.Snapshot(p.fs, dir, p.cfg.Formats)
	if err != nil {
		return err
	}

	var created []string

	for _, arch := range p.cfg.Architectures {
		names, err := p.buildArchitecture(ctx, arch, releaseVersion)
		if err != nil {
			return err
		}

		created = append(created, names...)
	}

	return p.writeManifest(ctx, releaseVersion, before, created)
}

// buildArchitecture runs the per-architecture step sequence and returns the
// package names the packaging tool reported.
func (p *pipeline) buildArchitecture(
	ctx context.Context,
	arch release.Architecture,
	releaseVersion string,
) ([]string, error) {
	ctx = logger.WithKV(ctx, "arch", arch.Name)

	if err := p.compiler.Compile(ctx, arch, releaseVersion); err != nil {
		return nil, err
	}

	if err := p.stager.Stage(ctx); err != nil {
		return nil, fmt.Errorf("stage %s: %w", arch.Name, err)
	}

	names := make([]string, 0, len(p.cfg.Formats))

	for _, format := range p.cfg.Formats {
		name, err := p.builder.Build(ctx, arch, format, releaseVersion)
		if err != nil {
			return nil, err
		}

		if name != "" {
			names = append(names, name)
		}
	}

	return names, nil
}

// checkSources verifies the packaging sources exist before anything runs.
func (p *pipeline) checkSources() error {
	for _, name := range p.cfg.Sources().Required() {
		if _, err := p.fs.Stat(name); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, os.ErrNotExist)
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}
	}

	return nil
}

// writeManifest replaces the release manifest with this run's packages:
// those fpm reported plus any written or rewritten since before was taken.
// Packages left over from earlier releases are not listed.
func (p *pipeline) writeManifest(
	ctx context.Context,
	releaseVersion string,
	before map[string]string,
	created []string,
) error {
	previous, err := p.manifests.Load(ctx)

	switch {
	case err == nil:
		logger.InfoKV(ctx, "Replacing release manifest",
			"previous_version", previous.Version,
			"previous_packages", len(previous.Packages))
	case !errors.Is(err, manifest.ErrNotFound):
		logger.WarnKV(ctx, "Ignoring unreadable release manifest",
			"path", p.cfg.Paths.Manifest,
			"error", err)
	}

	dir := outputDir(p.cfg.Layout())

	changed, err := packager.Changed(p.fs, dir, p.cfg.Formats, before)
	if err != nil {
		return err
	}

	produced, err := packager.Collect(p.fs, dir, releaseVersion, append(created, changed...), p.cfg.Formats)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Saving release manifest", "path", p.cfg.Paths.Manifest)

	if err = p.manifests.Save(ctx, produced); err != nil {
		return err
	}

	packager.LogSummary(ctx, dir, produced)

	return nil
}
