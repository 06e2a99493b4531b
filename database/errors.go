package database

import "github.com/pkg/errors"

// ErrNotFound is returned by a Cursor's Key or Value when the cursor is not
// positioned on an entry; the goleveldb-backed cursor wraps it with context
// via pkg/errors. Get reports an absent key through its found result
// instead, and Seek through its boolean result.
var ErrNotFound = errors.New("key not found")

// ErrTransactionClosed is returned when an operation is attempted against a
// transaction that has already been committed or rolled back.
var ErrTransactionClosed = errors.New("transaction is closed")
