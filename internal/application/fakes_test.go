package application

import (
	"context"
	"sync"

	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/helpers"
)

// -------- in-memory repository fakes --------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Contact.Email == u.Contact.Email {
			return apperr.Conflict("email already in use")
		}
	}
	u.ID = helpers.NewObjectID()
	u.Version = 1
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !helpers.IsObjectID(id) {
		return nil, apperr.Validation("invalid ID format")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Contact.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *entity.User) error {
	if !helpers.IsObjectID(u.ID) {
		return apperr.Validation("invalid ID format")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[u.ID]
	if !ok {
		return apperr.NotFound("user not found")
	}
	if stored.Version != u.Version {
		return apperr.Conflict("user was modified concurrently")
	}
	u.Version++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if !helpers.IsObjectID(id) {
		return apperr.Validation("invalid ID format")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(f.users, id)
	return nil
}

type fakeAnnouncementRepo struct {
	mu            sync.Mutex
	announcements map[string]*entity.Announcement

	failDelete bool // when set, Delete reports success but keeps the record
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{announcements: map[string]*entity.Announcement{}}
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, a *entity.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = helpers.NewObjectID()
	a.Version = 1
	cp := *a
	f.announcements[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncementRepo) GetByID(ctx context.Context, id string) (*entity.Announcement, error) {
	if !helpers.IsObjectID(id) {
		return nil, apperr.Validation("invalid ID format")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.announcements[id]
	if !ok {
		return nil, apperr.NotFound("announcement not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnnouncementRepo) List(ctx context.Context) ([]*entity.Announcement, error) {
	return f.filter(func(*entity.Announcement) bool { return true }), nil
}

func (f *fakeAnnouncementRepo) ListByDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(donorID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return f.filter(func(a *entity.Announcement) bool { return a.DonorID == donorID }), nil
}

func (f *fakeAnnouncementRepo) ListByDonee(ctx context.Context, doneeID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(doneeID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return f.filter(func(a *entity.Announcement) bool { return a.DoneeID == doneeID }), nil
}

func (f *fakeAnnouncementRepo) ListByDonorAndDonee(ctx context.Context, donorID, doneeID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(donorID) || !helpers.IsObjectID(doneeID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return f.filter(func(a *entity.Announcement) bool {
		return a.DonorID == donorID && a.DoneeID == doneeID
	}), nil
}

func (f *fakeAnnouncementRepo) ListUnclaimed(ctx context.Context) ([]*entity.Announcement, error) {
	return f.filter(func(a *entity.Announcement) bool { return !a.IsClaimed() }), nil
}

func (f *fakeAnnouncementRepo) ListUnclaimedExcludingDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(donorID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return f.filter(func(a *entity.Announcement) bool {
		return !a.IsClaimed() && a.DonorID != donorID
	}), nil
}

func (f *fakeAnnouncementRepo) Update(ctx context.Context, a *entity.Announcement) error {
	if !helpers.IsObjectID(a.ID) {
		return apperr.Validation("invalid ID format")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.announcements[a.ID]
	if !ok {
		return apperr.NotFound("announcement not found")
	}
	if stored.Version != a.Version {
		return apperr.Conflict("announcement was modified concurrently")
	}
	a.Version++
	cp := *a
	f.announcements[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncementRepo) Delete(ctx context.Context, id string) error {
	if !helpers.IsObjectID(id) {
		return apperr.Validation("invalid ID format")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.announcements[id]; !ok {
		return apperr.NotFound("announcement not found")
	}
	if !f.failDelete {
		delete(f.announcements, id)
	}
	return nil
}

func (f *fakeAnnouncementRepo) filter(keep func(*entity.Announcement) bool) []*entity.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Announcement, 0)
	for _, a := range f.announcements {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

// -------- publisher fake --------

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (f *fakePublisher) PublishJSON(ctx context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, body)
	return nil
}
