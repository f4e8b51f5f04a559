package credentials

import "errors"

var (
	// ErrStorageUnreadable means the store exists but could not be read or
	// decoded. Load still returns an empty list with it.
	ErrStorageUnreadable = errors.New("credential storage unreadable")

	// ErrStorageLocked marks an unreadable store whose contents may still be
	// intact: tokens that do not decrypt (wrong passphrase) or an I/O error.
	// It always comes wrapped together with ErrStorageUnreadable. Callers
	// must not save over such a store.
	ErrStorageLocked = errors.New("credential storage locked")

	// ErrInvalidIndex is returned for out-of-range list positions.
	ErrInvalidIndex = errors.New("invalid account index")
)
