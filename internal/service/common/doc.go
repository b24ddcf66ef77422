// Package common holds helpers shared by the packaging and deploy steps.
//
// It runs external programs with their exit status checked and stderr kept
// for the error, and shows a progress spinner on interactive terminals.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
