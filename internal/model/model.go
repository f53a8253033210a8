// Package model holds the domain entities and the request payloads that
// create them.
package model
