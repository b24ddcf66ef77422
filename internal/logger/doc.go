// Package logger wraps zap for the release tool:
//   - a global sugared logger writing a console encoding to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - leveled helpers (Infof, WarnKV, ...) that read the logger from a context.
//
// Stdout is reserved for the status lines printed by the pipeline, so nothing
// in this package writes there.
package logger
