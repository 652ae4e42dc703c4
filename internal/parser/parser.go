// Package parser defines the contract for turning raw source bytes into a
// dataset. Implementations live in subpackages (csv, json).
package parser

import (
	"io"

	"cleanse/pkg/records"
)

// Parser reads records from r and returns the parsed dataset along with the
// number of rows skipped due to parse errors.
type Parser interface {
	Parse(r io.Reader) (*records.Dataset, int, error)
}
