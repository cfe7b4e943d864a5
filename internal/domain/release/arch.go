package release

import "maps"

// Architecture is one supported build target.
type Architecture struct {
	// Name is the packaging-facing token, e.g. "i386".
	Name string `yaml:"name"`
	// GOARCH is the toolchain-facing token, e.g. "386".
	GOARCH string `yaml:"goarch"`
	// Env holds extra toolchain environment assignments, e.g. GOARM.
	Env map[string]string `yaml:"env,omitempty"`
}

// ToolchainArch returns the GOARCH value, falling back to Name when the
// table does not set one.
func (a Architecture) ToolchainArch() string {
	if a.GOARCH == "" {
		return a.Name
	}

	return a.GOARCH
}

// Clone returns a copy that does not share the Env map.
func (a Architecture) Clone() Architecture {
	a.Env = maps.Clone(a.Env)

	return a
}

// DefaultArchitectures returns the supported architecture table.
//
// The ARM revisions differ between armhf and arm64 and are kept exactly as
// configured; arm64 builds ignore GOARM.
func DefaultArchitectures() []Architecture {
	return []Architecture{
		{Name: "amd64", GOARCH: "amd64"},
		{Name: "i386", GOARCH: "386"},
		{Name: "armhf", GOARCH: "armhf", Env: map[string]string{"GOARM": "6"}},
		{Name: "arm64", GOARCH: "arm64", Env: map[string]string{"GOARM": "7"}},
	}
}

// FindArchitecture looks up an architecture by its packaging-facing name.
func FindArchitecture(archs []Architecture, name string) (Architecture, bool) {
	for _, a := range archs {
		if a.Name == name {
			return a.Clone(), true
		}
	}

	return Architecture{}, false
}
