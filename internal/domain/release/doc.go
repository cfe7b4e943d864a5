// Package release contains the domain types of a release build.
//
// Architecture maps a packaging-facing CPU name to the toolchain settings used
// to cross-compile for it. Format names an output package type. Metadata and
// PackageSpec describe what the external packager is told about a package.
// Layout and Sources name the staged installed-filesystem tree and the files
// it is assembled from.
package release
