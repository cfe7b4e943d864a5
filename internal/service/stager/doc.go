// Package stager rebuilds, from scratch, the directory tree that mirrors a
// package's installed filesystem, then copies the compiled binary and the
// auxiliary files into it.
//
// The tree lives on a go-billy filesystem rooted at the project directory:
// osfs in production, memfs in tests.
package stager
