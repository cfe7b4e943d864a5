// Package packager drives the external packaging tool (fpm).
//
// Builder turns a staged tree into one package per (architecture, format)
// pair, passing the fixed metadata contract on the command line. Collect then
// hashes every produced package with BLAKE3 into the release manifest that is
// published next to the packages.
package packager
