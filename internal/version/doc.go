// Package version exposes build metadata of the leggio-release binary.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
// This is the version of the tool itself, not of the app it ships.
package version
