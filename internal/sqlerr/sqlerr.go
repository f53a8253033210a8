// Package sqlerr translates database driver errors into API errors.
//
// It parses Postgres SQLSTATE codes from pgx and converts them into
// errs.HTTPError values (for example a CHECK violation on an empty
// course becomes a 400 instead of a 500).
package sqlerr
