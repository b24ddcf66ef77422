// Package appversion reads the version name of the Flutter app from the
// places its Android build takes it from.
//
// Sources are tried in order by a Resolver. A source that has nothing to say
// returns an empty string; a source that fails is logged and skipped, so a
// broken file degrades the result to "unknown" instead of aborting a release.
package appversion
