package interfaces

// -----------------------------------------------------------------------------
// ITokenStore defines the contract for durable key-value credential storage.
// -----------------------------------------------------------------------------

type ITokenStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the backing store (schema, pragmas).
	Initialize() error

	// -----------------------------------------------------------------------------

	// Set writes a value under key. Writes are immediately durable.
	Set(key, value string) error

	// -----------------------------------------------------------------------------

	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)

	// -----------------------------------------------------------------------------

	// Remove deletes a single key. Removing a missing key is a no-op.
	Remove(key string) error

	// -----------------------------------------------------------------------------

	// Clear deletes every stored key.
	Clear() error

	// -----------------------------------------------------------------------------

	// Close the underlying store
	Close() error
}
