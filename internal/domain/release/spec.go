package release

import "fmt"

// Metadata holds the package fields that stay the same across architectures.
type Metadata struct {
	// Name is the package name, also used for installed paths.
	Name string `yaml:"name"`
	// Maintainer is the maintainer identity, "Name <email>".
	Maintainer string `yaml:"maintainer"`
	// URL is the project homepage.
	URL string `yaml:"url"`
	// Description is the one-line package description.
	Description string `yaml:"description"`
	// Vendor is the vendor name.
	Vendor string `yaml:"vendor"`
	// Epoch is the numeric package epoch.
	Epoch int `yaml:"epoch"`
	// Depends lists runtime dependency declarations.
	Depends []string `yaml:"depends"`
}

// PackageSpec is everything the packager is told for one invocation.
type PackageSpec struct {
	Arch     Architecture
	Format   Format
	Version  string
	Metadata Metadata
}

// Conflicts renders the upgrade constraint "<name> < <version>".
func (s PackageSpec) Conflicts() string {
	return fmt.Sprintf("%s < %s", s.Metadata.Name, s.Version)
}
