// Package storage is the browser-storage analog the mock backend
// persists into: a flat namespace of string keys shared by every
// simulated tab of the same "origin". Three backends exist — an
// in-process map (tests and single-process demos), a JSON file tree,
// and Redis for tabs spread across processes.
package storage

// Storage is a shared key/value medium with change notification.
// Writes are last-write-wins at the key level; there is no locking
// across keys.
type Storage interface {
	// Get returns the value for key, and whether the key exists.
	Get(key string) (string, bool)
	// Set writes the value. Implementations notify watchers only when
	// the stored value actually changes.
	Set(key, value string) error
	// Delete removes the key. Deleting a missing key is a no-op.
	Delete(key string) error
	// Watch registers fn to run whenever the key's value changes. The
	// returned function cancels the watch.
	Watch(key string, fn func(value string)) (cancel func())
}
