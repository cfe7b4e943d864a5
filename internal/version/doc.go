// Package version derives the version string stamped into a release.
//
// A Resolver asks a Source once per process and memoizes the answer, so the
// compiler and the packager see the same string. CommandSource runs
// `git describe --always --tags`; RepositorySource computes the same form
// in-process with go-git.
//
// Variables Version, Commit, and BuildTime describe the release-builder binary
// itself. They are injected at build time via Go ldflags.
package version
