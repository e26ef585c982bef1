package booking

import (
	"errors"

	"fixit/database/repository"
	"fixit/utils"
)

// storeError maps repository failures onto error kinds.
func storeError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewNotFound("%s not found", what)
	case errors.Is(err, repository.ErrConflict):
		return utils.NewConflict("%s was changed concurrently, reload and retry", what)
	default:
		return utils.NewRemoteUnavailable("booking store unavailable", err)
	}
}
