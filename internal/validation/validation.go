// Package validation binds request payloads and validates them.
//
// It uses the `validator` library to enforce rules defined in struct tags
// (required fields, email formats) and converts validation failures into
// field errors the client can act on.
package validation
