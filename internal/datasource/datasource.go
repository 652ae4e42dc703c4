// Package datasource defines where raw source bytes come from. A Source
// yields a byte stream; the parser packages turn that stream into a dataset.
package datasource

import (
	"context"
	"io"
)

// Source opens a byte stream for one input. Implementations live in
// subpackages (file, httpsrc).
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
