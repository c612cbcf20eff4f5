package service

import (
	"fmt"

	"github.com/vinay02022/testinBackend/internal/apperr"
	"github.com/vinay02022/testinBackend/internal/models"
)

var ErrUnauthenticated = apperr.New(apperr.KindUnauthenticated, "Authentication required.")

// Authorize checks that an already resolved identity holds required.
// Authentication is checked first: a nil user never reaches the capability check.
func Authorize(user *models.User, required models.Permission) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.Permissions.Has(required) {
		return apperr.New(apperr.KindForbidden, fmt.Sprintf("Access denied. %s permission required.", required))
	}
	return nil
}
