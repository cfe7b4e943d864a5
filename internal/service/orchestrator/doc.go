// Package orchestrator is the release-builder entry point.
//
// Run loads the settings, checks that the packaging sources exist, resolves
// the version once, and then for every architecture in order compiles the
// binary, stages the installed tree and builds each package format. The first
// failure stops the run; later architectures are never attempted. After the
// last architecture the produced packages are hashed into the release
// manifest.
package orchestrator
