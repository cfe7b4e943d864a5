// Package common holds helpers shared by the pipeline services.
//
// It provides the command runner every external tool goes through (merged
// output capture, debug logging of each command, an opt-in allow-failure
// mode) and a guard against two release builds sharing one staging root.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
