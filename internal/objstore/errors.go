package objstore

import "errors"

// ErrNotFound is returned when an object file does not exist under the
// repository's objects directory.
var ErrNotFound = errors.New("objstore: object not found")

// ErrTypeMismatch is returned by GetObject when the caller supplies an expected
// type that differs from the type recorded in the object's header.
var ErrTypeMismatch = errors.New("objstore: object type mismatch")
