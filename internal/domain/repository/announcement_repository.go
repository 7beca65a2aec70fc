package repository

import (
	"context"

	"github.com/givecycle/givecycle/internal/domain/entity"
)

// AnnouncementRepository is the persistence contract for announcements.
// Filter queries return an empty slice, never an error, when nothing matches.
// Id parameters must be well-formed 24-hex identifiers; implementations fail
// with a validation error on malformed input instead of attempting a lookup.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *entity.Announcement) error
	GetByID(ctx context.Context, id string) (*entity.Announcement, error)
	List(ctx context.Context) ([]*entity.Announcement, error)
	ListByDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error)
	ListByDonee(ctx context.Context, doneeID string) ([]*entity.Announcement, error)
	ListByDonorAndDonee(ctx context.Context, donorID, doneeID string) ([]*entity.Announcement, error)
	ListUnclaimed(ctx context.Context) ([]*entity.Announcement, error)
	ListUnclaimedExcludingDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error)
	Update(ctx context.Context, a *entity.Announcement) error
	Delete(ctx context.Context, id string) error
}
