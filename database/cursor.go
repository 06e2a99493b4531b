package database

// Cursor iterates over every key/value pair sharing the prefix it was
// opened with.
type Cursor interface {
	// Next advances to the next key/value pair. It returns false once
	// the cursor is exhausted or after it has been closed.
	Next() bool

	// First moves to the first key/value pair, returning whether one
	// exists.
	First() bool

	// Seek moves to the first key/value pair whose key is greater than
	// or equal to key.
	Seek(key []byte) (bool, error)

	// Key returns the current key with the cursor's prefix trimmed off.
	// The caller must not retain the returned slice past the next call
	// to Next.
	Key() ([]byte, error)

	// Value returns the current value. The caller must not retain the
	// returned slice past the next call to Next.
	Value() ([]byte, error)

	// Close releases the cursor's resources.
	Close() error
}
