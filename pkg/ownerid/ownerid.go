// Package ownerid generates the random 128-bit owner identifiers assigned
// to each lock/semaphore/latch instance at construction.
//
// The owner id is the value stored under a lock key and the sole token
// accepted by the conditional delete; it is what prevents lock theft when a
// lease expires and is re-acquired by another client mid-flight. This
// package uses github.com/google/uuid: an unordered random value with no
// sortability requirement, UUIDv4 is the direct fit.
package ownerid

import "github.com/google/uuid"

// New returns a fresh random 128-bit owner id, serialized as text.
func New() string {
	return uuid.NewString()
}
