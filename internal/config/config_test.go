package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-builder/internal/domain/release"
)

// TestLoad_MissingFileYieldsDefaults ensures a run without a settings file uses the historical values.
func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "amonagent", cfg.Project.Name)
	require.Equal(t, 1, cfg.Project.Epoch)
	require.Equal(t, []string{"adduser", "sysstat"}, cfg.Project.Depends)
	require.Equal(t, []release.Format{release.FormatRPM, release.FormatDEB}, cfg.Formats)
}

// TestLoad_OverridesAndDefaults checks partial files keep defaults for omitted fields.
func TestLoad_OverridesAndDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := []byte(`
project:
  name: probe
  epoch: 2
version_source: go-git
formats: [DEB]
`)
	require.NoError(t, os.WriteFile(path, contents, DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "probe", cfg.Project.Name)
	require.Equal(t, 2, cfg.Project.Epoch)
	require.Equal(t, VersionSourceGoGit, cfg.VersionSource)
	require.Equal(t, []release.Format{release.FormatDEB}, cfg.Formats)
	require.Equal(t, "packaging/build", cfg.Paths.Build)
	require.Equal(t, "main.Version", cfg.VersionSymbol)
	require.Len(t, cfg.Architectures, 4)
}

// TestLoad_BareArchitectureNames checks known names pick up their toolchain settings.
func TestLoad_BareArchitectureNames(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := []byte(`
architectures:
  - name: i386
  - name: armhf
  - name: riscv64
    goarch: riscv64
`)
	require.NoError(t, os.WriteFile(path, contents, DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Architectures, 3)
	require.Equal(t, "386", cfg.Architectures[0].ToolchainArch())
	require.Equal(t, map[string]string{"GOARM": "6"}, cfg.Architectures[1].Env)
	require.Equal(t, release.Architecture{Name: "riscv64", GOARCH: "riscv64"}, cfg.Architectures[2])
}

// TestSave_RoundTrip ensures saved settings load back unchanged.
func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)

	cfg := Default()
	cfg.Project.Epoch = 3
	cfg.Formats = []release.Format{release.FormatDEB}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	require.ErrorIs(t, Save(path, nil), errConfigIsNotSet)

	cfg.Project.Name = ""
	require.ErrorIs(t, Save(path, cfg), errNameRequired)
}

// TestLoad_BadYAML ensures decode errors surface.
func TestLoad_BadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte("project: [unclosed"), DefaultFilePermissions))

	_, err := Load(path)
	require.Error(t, err)
}

// TestValidate checks required fields and value validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	cfg := Default()
	cfg.Project.Name = ""
	require.ErrorIs(t, Validate(cfg), errNameRequired)

	cfg = Default()
	cfg.Architectures = nil
	require.ErrorIs(t, Validate(cfg), errNoArchitectures)

	cfg = Default()
	cfg.Architectures = append(cfg.Architectures, release.Architecture{Name: "amd64"})
	require.ErrorIs(t, Validate(cfg), errDuplicateArchitecture)

	cfg = Default()
	cfg.Architectures = append(cfg.Architectures, release.Architecture{GOARCH: "riscv64"})
	err := Validate(cfg)
	require.ErrorIs(t, err, errArchitectureNameRequired)
	require.NotErrorIs(t, err, errDuplicateArchitecture)

	cfg = Default()
	cfg.Formats = nil
	require.ErrorIs(t, Validate(cfg), errNoFormats)

	cfg = Default()
	cfg.Formats = []release.Format{"apk"}
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.VersionSource = "svn"
	require.ErrorIs(t, Validate(cfg), errUnknownVersionSource)

	for _, build := range []string{".", "/tmp/build", "../build"} {
		cfg = Default()
		cfg.Paths.Build = build
		require.ErrorIs(t, Validate(cfg), errBuildOutsideRoot, build)
	}

	cfg = Default()
	cfg.Paths.Binary = ""
	cfg.Tools.FPM = ""
	require.NoError(t, Validate(cfg))
	require.Equal(t, "amonagent", cfg.Paths.Binary)
	require.Equal(t, "fpm", cfg.Tools.FPM)
}

// TestLayoutAndSources ensures the derived paths follow the settings.
func TestLayoutAndSources(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Paths.Build = "packaging/build/"

	require.Equal(t, "packaging/build", cfg.Layout().Root)
	require.Equal(t, "amonagent", cfg.Layout().Name)
	require.Equal(t, "packaging/init.sh", cfg.Sources().InitScript())

	abs, err := cfg.OnDisk("packaging/build")
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(abs))
}
