// internal/adapters/out/firestore/errors.go
package firestore

import "errors"

// ErrConflict reports a transactional read-modify-write that lost its
// optimistic-concurrency race even after the client's internal retries.
// The transport maps it to 409.
var ErrConflict = errors.New("firestore: transaction contention")
