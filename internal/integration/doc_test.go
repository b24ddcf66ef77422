// Package integration runs the release pipeline end to end against a
// temporary Flutter project and a fake remote-copy program.
package integration
