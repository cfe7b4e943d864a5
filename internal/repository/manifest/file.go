package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/release-builder/internal/config"
	"github.com/oshokin/release-builder/internal/domain/release"
)

// Repository defines persistence operations for the release manifest.
type Repository interface {
	Load(ctx context.Context) (*release.Manifest, error)
	Save(ctx context.Context, manifest *release.Manifest) error
}

// FileRepository keeps the manifest in a YAML file on a billy filesystem.
type FileRepository struct {
	// fs is the filesystem holding the manifest.
	fs billy.Filesystem
	// path is the manifest location inside fs.
	path string
	// mu protects concurrent access to the manifest file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no manifest has been written yet.
	ErrNotFound = errors.New("manifest not found")
	// errManifestIsNotSet is returned when Save receives nil.
	errManifestIsNotSet = errors.New("manifest is not set")
)

// NewFileRepository creates a repository reading and writing path inside fs.
func NewFileRepository(fs billy.Filesystem, path string) *FileRepository {
	return &FileRepository{
		fs:   fs,
		path: path,
	}
}

// Load reads the manifest.
func (r *FileRepository) Load(_ context.Context) (*release.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := util.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest release.Manifest
	if err = yaml.Unmarshal(contents, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &manifest, nil
}

// Save replaces the manifest.
func (r *FileRepository) Save(_ context.Context, manifest *release.Manifest) error {
	if manifest == nil {
		return errManifestIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err = util.WriteFile(r.fs, r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
