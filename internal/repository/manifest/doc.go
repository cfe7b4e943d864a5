// Package manifest persists the release manifest as YAML next to the
// produced packages.
package manifest
