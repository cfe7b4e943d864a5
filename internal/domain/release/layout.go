package release

import "path"

// Layout names the paths of the staged installed-filesystem tree.
// All paths are slash-separated and relative to the project root.
type Layout struct {
	// Root is the staging root, e.g. "packaging/build".
	Root string
	// Name is the package name used in installed paths.
	Name string
}

// InstalledBinary is the primary binary install path.
func (l Layout) InstalledBinary() string {
	return path.Join(l.Root, "opt", l.Name, l.Name)
}

// ConvenienceBinary is the usr/bin copy of the binary.
func (l Layout) ConvenienceBinary() string {
	return path.Join(l.Root, "usr", "bin", l.Name)
}

// ConfigDir is the configuration directory.
func (l Layout) ConfigDir() string {
	return path.Join(l.Root, "etc", "opt", l.Name)
}

// PluginsEnabledDir is left empty; plugin management fills it after install.
func (l Layout) PluginsEnabledDir() string {
	return path.Join(l.ConfigDir(), "plugins-enabled")
}

// LogDir is the log directory.
func (l Layout) LogDir() string {
	return path.Join(l.Root, "var", "log", l.Name)
}

// TmpfilesDir holds the runtime-directory descriptor.
func (l Layout) TmpfilesDir() string {
	return path.Join(l.Root, "usr", "lib", "tmpfiles.d")
}

// TmpfilesFile is the staged tmpfiles.d descriptor.
func (l Layout) TmpfilesFile() string {
	return path.Join(l.TmpfilesDir(), l.Name)
}

// ScriptsDir holds the service and init scripts.
func (l Layout) ScriptsDir() string {
	return path.Join(l.Root, "opt", l.Name, "scripts")
}

// ServiceFile is the shared destination of the init script and service unit.
func (l Layout) ServiceFile() string {
	return path.Join(l.ScriptsDir(), l.Name+".service")
}

// Directories returns every directory the stager creates, in creation order.
func (l Layout) Directories() []string {
	return []string{
		l.Root,
		l.ConfigDir(),
		l.PluginsEnabledDir(),
		path.Dir(l.InstalledBinary()),
		path.Dir(l.ConvenienceBinary()),
		l.LogDir(),
		l.TmpfilesDir(),
		l.ScriptsDir(),
	}
}

// Sources names the files a release is assembled from.
// All paths are slash-separated and relative to the project root.
type Sources struct {
	// Packaging is the directory holding scripts and templates, e.g. "packaging".
	Packaging string
	// Binary is the compiled artifact path.
	Binary string
	// Name is the package name used in template file names.
	Name string
}

// Tmpfiles is the tmpfiles.d descriptor template.
func (s Sources) Tmpfiles() string {
	return path.Join(s.Packaging, "tmpfilesd_"+s.Name+".conf")
}

// InitScript is the SysV init script template.
func (s Sources) InitScript() string {
	return path.Join(s.Packaging, "init.sh")
}

// ServiceUnit is the systemd unit template.
func (s Sources) ServiceUnit() string {
	return path.Join(s.Packaging, s.Name+".service")
}

// PostInstall is the post-install lifecycle script.
func (s Sources) PostInstall() string {
	return path.Join(s.Packaging, "postinst.sh")
}

// PostUninstall is the post-uninstall lifecycle script.
func (s Sources) PostUninstall() string {
	return path.Join(s.Packaging, "postrm.sh")
}

// PreUninstall is the pre-uninstall lifecycle script.
func (s Sources) PreUninstall() string {
	return path.Join(s.Packaging, "prerm.sh")
}

// Required returns the files that must exist before a run starts.
func (s Sources) Required() []string {
	return []string{
		s.InitScript(),
		s.ServiceUnit(),
		s.Tmpfiles(),
		s.PostInstall(),
		s.PostUninstall(),
		s.PreUninstall(),
	}
}
