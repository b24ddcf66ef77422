// Package pipeline chains the post-build steps: version-qualify, then deploy.
//
// Deploy runs after rename whether rename copied a file or found nothing to
// copy, and never after rename failed. A run is a single forward pass with no
// retries.
package pipeline
