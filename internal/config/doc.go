// Package config defines the release settings used by release-builder and
// provides helpers to load and validate them from YAML.
//
// A missing settings file is not an error: Default reproduces the values the
// build has always used.
package config
