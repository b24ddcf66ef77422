// Package config defines the settings of a release run and provides helpers
// to locate, load, validate and save them in YAML format.
//
// Defaults reproduce the Leggio project layout and its download server, so an
// empty or missing file is a valid configuration.
package config
