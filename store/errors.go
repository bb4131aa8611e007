package store

import "errors"

// ErrNotFound is returned by lookups (friendly names, delivery report
// target resolution, cache reads) that find no matching row.
var ErrNotFound = errors.New("store: not found")

// ErrCryptoError marks a message row whose ciphertext failed to
// decrypt (corruption, wrong key). It never aborts a read: the
// affected row is returned with DecryptFailed set and a placeholder
// Content, and decoding continues with the remaining rows.
var ErrCryptoError = errors.New("store: decrypt failed")
