package usecase

import crerr "github.com/cockroachdb/errors"

// Sentinels are wrapped with context and matched with errors.Is at the
// HTTP boundary.
var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	// ErrConflict reports a crawl run already in progress.
	ErrConflict = crerr.New("conflict")
)
