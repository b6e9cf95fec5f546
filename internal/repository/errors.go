package repository

import "errors"

// ErrStaleWrite is returned when a compare-and-swap update matched no row
// because another writer bumped the version first.
var ErrStaleWrite = errors.New("row was modified concurrently")
