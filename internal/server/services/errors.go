// Package services holds the server's business logic: identity lifecycle
// and message delivery.
package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// storageErr tags an unexpected repository failure as ErrStorageUnavailable.
// Errors already in the taxonomy pass through.
func storageErr(op string, err error) error {
	for _, known := range []error{
		common.ErrValidation,
		common.ErrConflict,
		common.ErrIdentityNotFound,
		common.ErrStorageUnavailable,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %v", op, common.ErrStorageUnavailable, err)
}
