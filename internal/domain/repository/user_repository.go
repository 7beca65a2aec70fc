package repository

import (
	"context"

	"github.com/givecycle/givecycle/internal/domain/entity"
)

// UserRepository is the persistence contract for users. Implementations must
// reject malformed ids with a validation error before any lookup, return a
// not-found error for absent entities, and a conflict error when an update
// loses an optimistic version check or a create hits a duplicate email.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}
