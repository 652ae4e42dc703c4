// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: a blank import runs each backend's init,
// which registers its factory with the storage package. Binaries that only
// need a subset can import the individual backend packages instead.
package all

import (
	_ "cleanse/internal/storage/postgres"
	_ "cleanse/internal/storage/sqlite"
)
