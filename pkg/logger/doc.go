// Package logger provides structured logging on top of log/slog.
//
// Three handler flavors cover the framework's needs:
//
//   - [New] returns a JSON stdout logger tagged with a component name.
//   - [NewDailyFile] returns a handler that appends plain-text lines
//     to one file per calendar day, lock-guarded so concurrent worker
//     processes cannot interleave partial lines.
//   - [NewWithSentry] adds Sentry forwarding for warnings and errors,
//     degrading to stdout-only when no DSN is configured.
//
// Every flavor accepts [ContextExtractor] functions that pull
// request-scoped attributes (correlation ID, user ID) out of the
// context on each log call.
package logger
