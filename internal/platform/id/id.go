// Package id generates sortable identifiers for stored records.
package id

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewID returns a new lowercase ULID.
func NewID() string {
	return strings.ToLower(ulid.Make().String())
}

// Valid reports whether value parses as a ULID.
func Valid(value string) bool {
	_, err := ulid.ParseStrict(strings.ToUpper(strings.TrimSpace(value)))
	return err == nil
}
