// Package compiler cross-compiles the release binary for one architecture at
// a time, stamping the resolved version into it at link time.
package compiler
