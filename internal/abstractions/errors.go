package abstractions

import "errors"

// ErrObjectNotFound is returned by ObjectStore.Open when nothing is stored at
// the location.
var ErrObjectNotFound = errors.New("object not found")
