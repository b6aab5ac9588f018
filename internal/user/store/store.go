// Package store persists user accounts. Implementations return
// sentinel.ErrNotFound for missing users and sentinel.ErrConflict for
// duplicate emails.
package store

import (
	"context"

	"rngenius/internal/user/models"
	"rngenius/pkg/domain"
)

type Store interface {
	Add(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
