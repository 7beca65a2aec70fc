package handlers

import (
	"context"

	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/helpers"
)

type memUserRepo struct {
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	for _, existing := range m.users {
		if existing.Contact.Email == u.Contact.Email {
			return apperr.Conflict("email already in use")
		}
	}
	u.ID = helpers.NewObjectID()
	u.Version = 1
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Contact.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *memUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserRepo) Update(ctx context.Context, u *entity.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	u.Version++
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(m.users, id)
	return nil
}

type memAnnouncementRepo struct {
	announcements map[string]*entity.Announcement
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{announcements: map[string]*entity.Announcement{}}
}

func (m *memAnnouncementRepo) Create(ctx context.Context, a *entity.Announcement) error {
	a.ID = helpers.NewObjectID()
	a.Version = 1
	cp := *a
	m.announcements[a.ID] = &cp
	return nil
}

func (m *memAnnouncementRepo) GetByID(ctx context.Context, id string) (*entity.Announcement, error) {
	a, ok := m.announcements[id]
	if !ok {
		return nil, apperr.NotFound("announcement not found")
	}
	cp := *a
	return &cp, nil
}

func (m *memAnnouncementRepo) List(ctx context.Context) ([]*entity.Announcement, error) {
	return m.filter(func(*entity.Announcement) bool { return true }), nil
}

func (m *memAnnouncementRepo) ListByDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error) {
	return m.filter(func(a *entity.Announcement) bool { return a.DonorID == donorID }), nil
}

func (m *memAnnouncementRepo) ListByDonee(ctx context.Context, doneeID string) ([]*entity.Announcement, error) {
	return m.filter(func(a *entity.Announcement) bool { return a.DoneeID == doneeID }), nil
}

func (m *memAnnouncementRepo) ListByDonorAndDonee(ctx context.Context, donorID, doneeID string) ([]*entity.Announcement, error) {
	return m.filter(func(a *entity.Announcement) bool {
		return a.DonorID == donorID && a.DoneeID == doneeID
	}), nil
}

func (m *memAnnouncementRepo) ListUnclaimed(ctx context.Context) ([]*entity.Announcement, error) {
	return m.filter(func(a *entity.Announcement) bool { return !a.IsClaimed() }), nil
}

func (m *memAnnouncementRepo) ListUnclaimedExcludingDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error) {
	return m.filter(func(a *entity.Announcement) bool {
		return !a.IsClaimed() && a.DonorID != donorID
	}), nil
}

func (m *memAnnouncementRepo) Update(ctx context.Context, a *entity.Announcement) error {
	if _, ok := m.announcements[a.ID]; !ok {
		return apperr.NotFound("announcement not found")
	}
	a.Version++
	cp := *a
	m.announcements[a.ID] = &cp
	return nil
}

func (m *memAnnouncementRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.announcements[id]; !ok {
		return apperr.NotFound("announcement not found")
	}
	delete(m.announcements, id)
	return nil
}

func (m *memAnnouncementRepo) filter(keep func(*entity.Announcement) bool) []*entity.Announcement {
	out := make([]*entity.Announcement, 0)
	for _, a := range m.announcements {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}
