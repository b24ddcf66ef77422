// Package packager version-qualifies the release artifact.
//
// It copies outputs/<packaging>-apk/app-release.apk to leggio-<version>.apk
// next to it. A missing source is not an error: the step reports that it was
// skipped so the deploy step can still run.
package packager
