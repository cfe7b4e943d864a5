package release

// Manifest lists the packages produced by one release run.
type Manifest struct {
	// Version is the resolved release version.
	Version string `yaml:"version"`
	// Packages are sorted by file name.
	Packages []Artifact `yaml:"packages"`
}

// Artifact is one produced package file.
type Artifact struct {
	// File is the package file name inside the output directory.
	File string `yaml:"file"`
	// Format is the package format.
	Format Format `yaml:"format"`
	// Size is the file size in bytes.
	Size int64 `yaml:"size"`
	// Checksum is the hex BLAKE3-256 digest of the file.
	Checksum string `yaml:"blake3"`
}
