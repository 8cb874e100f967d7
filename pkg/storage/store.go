package storage

// Store is a string key-value store backing local persistence
// (last view, selected profile id, analytics session, auth session).
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool)
	// Set stores a value under key, overwriting any previous value.
	Set(key, value string) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}
