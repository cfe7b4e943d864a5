package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/release-builder/internal/domain/release"
)

// Config holds everything a release run needs to know.
type Config struct {
	// Project holds package metadata shared by every architecture.
	Project release.Metadata `yaml:"project"`
	// Paths locates sources and outputs relative to the project root.
	Paths Paths `yaml:"paths"`
	// Tools names the external executables.
	Tools Tools `yaml:"tools"`
	// VersionSymbol is the linker symbol receiving the resolved version.
	VersionSymbol string `yaml:"version_symbol"`
	// VersionSource selects how the version is derived: "git" or "go-git".
	VersionSource string `yaml:"version_source"`
	// Architectures is the ordered table of build targets.
	Architectures []release.Architecture `yaml:"architectures"`
	// Formats lists the package formats built per architecture, in order.
	Formats []release.Format `yaml:"formats"`
}

// Paths are slash-separated and relative to Root unless noted.
type Paths struct {
	// Root is the project root directory on disk.
	Root string `yaml:"root"`
	// Packaging holds script templates and lifecycle scripts.
	Packaging string `yaml:"packaging"`
	// Build is the staging root.
	Build string `yaml:"build"`
	// Binary is the compiled artifact, overwritten on every compile.
	Binary string `yaml:"binary"`
	// Main is the package or file passed to the compiler.
	Main string `yaml:"main"`
	// Manifest is where the release manifest is written.
	Manifest string `yaml:"manifest"`
}

// Tools names the external executables invoked by the pipeline.
type Tools struct {
	Go  string `yaml:"go"`
	FPM string `yaml:"fpm"`
	Git string `yaml:"git"`
}

const (
	// DefaultConfigFilename is the settings file looked up in the working directory.
	DefaultConfigFilename = "release-builder.yaml"

	// VersionSourceGit runs the git executable.
	VersionSourceGit = "git"
	// VersionSourceGoGit reads the repository in-process.
	VersionSourceGoGit = "go-git"

	// DefaultFilePermissions is the permission for files written by the builder.
	DefaultFilePermissions = 0o644
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNameRequired is returned when the package name is missing.
	errNameRequired = errors.New("project name must be provided")
	// errNoArchitectures is returned when the architecture table is empty.
	errNoArchitectures = errors.New("at least one architecture must be configured")
	// errArchitectureNameRequired is returned when an architecture has no name.
	errArchitectureNameRequired = errors.New("architecture name must be provided")
	// errDuplicateArchitecture is returned when an architecture name repeats.
	errDuplicateArchitecture = errors.New("duplicate architecture")
	// errNoFormats is returned when no package format is configured.
	errNoFormats = errors.New("at least one package format must be configured")
	// errUnknownVersionSource is returned for version sources other than git and go-git.
	errUnknownVersionSource = errors.New("unknown version source")
	// errBuildOutsideRoot is returned when the staging root would escape or equal the project root.
	errBuildOutsideRoot = errors.New("build directory must be a subdirectory of the project root")
)

// Default returns the settings every release has used so far.
func Default() *Config {
	return &Config{
		Project: release.Metadata{
			Name:        "amonagent",
			Maintainer:  "Amon Packages <packages@amon.cx>",
			URL:         "http://amon.cx/",
			Description: "Amon monitoring agent",
			Vendor:      "Amon",
			Epoch:       1,
			Depends:     []string{"adduser", "sysstat"},
		},
		Paths: Paths{
			Root:      ".",
			Packaging: "packaging",
			Build:     "packaging/build",
			Binary:    "amonagent",
			Main:      "./cmd/amonagent.go",
			Manifest:  "packaging/release-manifest.yaml",
		},
		Tools: Tools{
			Go:  "go",
			FPM: "fpm",
			Git: "git",
		},
		VersionSymbol: "main.Version",
		VersionSource: VersionSourceGit,
		Architectures: release.DefaultArchitectures(),
		Formats:       release.DefaultFormats(),
	}
}

// Load reads settings from path on top of Default and validates them.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, Validate(cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults for empty optional ones.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Project.Name == "" {
		return errNameRequired
	}

	fillDefaults(cfg)

	if len(cfg.Architectures) == 0 {
		return errNoArchitectures
	}

	seen := make(map[string]struct{}, len(cfg.Architectures))
	for i, arch := range cfg.Architectures {
		if arch.Name == "" {
			return fmt.Errorf("%w: entry %d", errArchitectureNameRequired, i)
		}

		if _, found := seen[arch.Name]; found {
			return fmt.Errorf("%w: %q", errDuplicateArchitecture, arch.Name)
		}

		seen[arch.Name] = struct{}{}
	}

	if len(cfg.Formats) == 0 {
		return errNoFormats
	}

	for i, format := range cfg.Formats {
		parsed, err := release.ParseFormat(string(format))
		if err != nil {
			return err
		}

		cfg.Formats[i] = parsed
	}

	if !slices.Contains([]string{VersionSourceGit, VersionSourceGoGit}, cfg.VersionSource) {
		return fmt.Errorf("%w: %q", errUnknownVersionSource, cfg.VersionSource)
	}

	build := path.Clean(filepath.ToSlash(cfg.Paths.Build))
	if build == "." || build == ".." || path.IsAbs(build) || strings.HasPrefix(build, "../") {
		return fmt.Errorf("%w: %q", errBuildOutsideRoot, cfg.Paths.Build)
	}

	return nil
}

// fillDefaults replaces empty optional fields with Default values.
func fillDefaults(cfg *Config) {
	def := Default()

	setIfEmpty(&cfg.Paths.Root, def.Paths.Root)
	setIfEmpty(&cfg.Paths.Packaging, def.Paths.Packaging)
	setIfEmpty(&cfg.Paths.Build, def.Paths.Build)
	setIfEmpty(&cfg.Paths.Binary, cfg.Project.Name)
	setIfEmpty(&cfg.Paths.Main, def.Paths.Main)
	setIfEmpty(&cfg.Paths.Manifest, def.Paths.Manifest)
	setIfEmpty(&cfg.Tools.Go, def.Tools.Go)
	setIfEmpty(&cfg.Tools.FPM, def.Tools.FPM)
	setIfEmpty(&cfg.Tools.Git, def.Tools.Git)
	setIfEmpty(&cfg.VersionSymbol, def.VersionSymbol)
	setIfEmpty(&cfg.VersionSource, def.VersionSource)

	// A bare name of a known architecture takes its toolchain settings from the table.
	for i, arch := range cfg.Architectures {
		if arch.GOARCH != "" || arch.Env != nil {
			continue
		}

		if known, found := release.FindArchitecture(def.Architectures, arch.Name); found {
			cfg.Architectures[i] = known
		}
	}
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Layout returns the staged tree layout for these settings.
func (c *Config) Layout() release.Layout {
	return release.Layout{
		Root: path.Clean(filepath.ToSlash(c.Paths.Build)),
		Name: c.Project.Name,
	}
}

// Sources returns the source file locations for these settings.
func (c *Config) Sources() release.Sources {
	return release.Sources{
		Packaging: path.Clean(filepath.ToSlash(c.Paths.Packaging)),
		Binary:    path.Clean(filepath.ToSlash(c.Paths.Binary)),
		Name:      c.Project.Name,
	}
}

// OnDisk returns a slash-separated project-relative path as an absolute OS path.
func (c *Config) OnDisk(rel string) (string, error) {
	root, err := filepath.Abs(c.Paths.Root)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}

	return filepath.Join(root, filepath.FromSlash(rel)), nil
}
