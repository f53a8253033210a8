// Package errs defines the error shapes returned to API clients.
//
// Every failure a handler returns is eventually rendered as an HTTPError
// by the global error handler, so clients always see the same JSON
// envelope: a machine code, a message, the status and optional
// field-level errors.
package errs
