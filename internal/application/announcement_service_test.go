package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/mailer"
)

func newTestAnnouncementService() (*AnnouncementService, *fakeUserRepo, *fakeAnnouncementRepo, *fakePublisher) {
	users := newFakeUserRepo()
	announcements := newFakeAnnouncementRepo()
	pub := &fakePublisher{}
	svc := NewAnnouncementService(announcements, users, pub, nil, "", nil, "", nil)
	return svc, users, announcements, pub
}

func mustCreateUser(t *testing.T, users *fakeUserRepo, name, email string) *entity.User {
	t.Helper()
	u := &entity.User{
		Name:        name,
		DateOfBirth: "1990-01-15",
		Contact:     entity.Contact{Email: email, City: "Porto"},
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func validProduct() ProductInput {
	return ProductInput{
		Name:        "Winter coat",
		Description: "Warm coat, barely used",
		PhotoURL:    "https://img.example.com/coat.jpg",
		Category:    "clothing",
	}
}

func TestCreateAnnouncement(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	before := time.Now().UTC()
	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	after := time.Now().UTC()

	require.NoError(t, err)
	assert.Len(t, a.ID, 24)
	assert.Equal(t, donor.ID, a.DonorID)
	assert.Empty(t, a.DoneeID)
	assert.False(t, a.IsClaimed())
	assert.False(t, a.CreatedAt.Before(before))
	assert.False(t, a.CreatedAt.After(after))

	stored, err := svc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Product, stored.Product)
}

func TestCreateAnnouncementUnknownDonor(t *testing.T) {
	svc, _, announcements, _ := newTestAnnouncementService()

	_, err := svc.Create(context.Background(), "0123456789abcdef01234567", validProduct())
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "user donor ID does not exist")

	all, err := announcements.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAnnouncementInvalidProduct(t *testing.T) {
	svc, users, announcements, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	cases := []struct {
		name   string
		mutate func(*ProductInput)
		field  string
	}{
		{"blank name", func(p *ProductInput) { p.Name = "   " }, "product_name"},
		{"blank description", func(p *ProductInput) { p.Description = "" }, "product_description"},
		{"blank photo url", func(p *ProductInput) { p.PhotoURL = "" }, "product_photo_url"},
		{"blank category", func(p *ProductInput) { p.Category = "\t" }, "product_category"},
		{"name too long", func(p *ProductInput) { p.Name = strings.Repeat("x", 31) }, "product_name"},
		{"description too long", func(p *ProductInput) { p.Description = strings.Repeat("x", 501) }, "product_description"},
		{"category too long", func(p *ProductInput) { p.Category = strings.Repeat("x", 256) }, "product_category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProduct()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), donor.ID, in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, apperr.FieldsOf(err), tc.field)
		})
	}

	all, err := announcements.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProductLengthBoundaries(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	in := validProduct()
	in.Name = strings.Repeat("n", 30)
	in.Description = strings.Repeat("d", 500)
	in.Category = strings.Repeat("c", 255)

	_, err := svc.Create(context.Background(), donor.ID, in)
	assert.NoError(t, err)
}

func TestClaimAnnouncement(t *testing.T) {
	svc, users, _, pub := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")
	donee := mustCreateUser(t, users, "Bob", "bob@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	claimed, err := svc.Claim(context.Background(), a.ID, donee.ID)
	require.NoError(t, err)
	assert.Equal(t, donee.ID, claimed.DoneeID)
	assert.True(t, claimed.IsClaimed())

	require.Len(t, pub.jobs, 1)
	job, ok := pub.jobs[0].(mailer.ClaimJob)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, "Bob", job.DoneeName)
	assert.Equal(t, a.ID, job.AnnouncementID)
	assert.Equal(t, "Winter coat", job.ProductName)
}

func TestClaimOwnAnnouncement(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), a.ID, donor.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "cannot be the same")

	stored, err := svc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsClaimed())
}

func TestClaimAlreadyClaimed(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")
	first := mustCreateUser(t, users, "Bob", "bob@example.com")
	second := mustCreateUser(t, users, "Carol", "carol@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), a.ID, first.ID)
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), a.ID, second.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "already claimed")

	stored, err := svc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.DoneeID)
}

func TestClaimUnknownDonee(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), a.ID, "0123456789abcdef01234567")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUndoClaim(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")
	donee := mustCreateUser(t, users, "Bob", "bob@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), a.ID, donee.ID)
	require.NoError(t, err)

	undone, err := svc.UndoClaim(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Empty(t, undone.DoneeID)
	assert.False(t, undone.IsClaimed())
	assert.Equal(t, donor.ID, undone.DonorID)
}

func TestUndoClaimOnUnclaimed(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	_, err = svc.UndoClaim(context.Background(), a.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	stored, err := svc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsClaimed())
}

func TestUpdateProduct(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), a.ID, ProductInput{
		Name:        "Rain jacket",
		Description: "Lightweight shell",
		PhotoURL:    "https://img.example.com/jacket.jpg",
		Category:    "clothing",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rain jacket", updated.Product.Name)
	assert.Equal(t, donor.ID, updated.DonorID)
	assert.True(t, updated.CreatedAt.Equal(a.CreatedAt))
	assert.Empty(t, updated.DoneeID)
}

func TestUpdateProductInvalid(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), a.ID, ProductInput{Name: "only name"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	stored, err := svc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter coat", stored.Product.Name)
}

func TestUpdateProductUnknownID(t *testing.T) {
	svc, _, _, _ := newTestAnnouncementService()

	_, err := svc.UpdateProduct(context.Background(), "0123456789abcdef01234567", validProduct())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteAnnouncement(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), a.ID))

	err = svc.Delete(context.Background(), a.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteVerifiesRemoval(t *testing.T) {
	svc, users, announcements, _ := newTestAnnouncementService()
	donor := mustCreateUser(t, users, "Alice", "alice@example.com")

	a, err := svc.Create(context.Background(), donor.ID, validProduct())
	require.NoError(t, err)

	announcements.failDelete = true
	err = svc.Delete(context.Background(), a.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestListFilters(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	alice := mustCreateUser(t, users, "Alice", "alice@example.com")
	bob := mustCreateUser(t, users, "Bob", "bob@example.com")

	a1, err := svc.Create(context.Background(), alice.ID, validProduct())
	require.NoError(t, err)
	a2, err := svc.Create(context.Background(), bob.ID, validProduct())
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), a2.ID, alice.ID)
	require.NoError(t, err)

	byDonor, err := svc.ListByDonor(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, byDonor, 1)
	assert.Equal(t, a1.ID, byDonor[0].ID)

	byDonee, err := svc.ListByDonee(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, byDonee, 1)
	assert.Equal(t, a2.ID, byDonee[0].ID)

	both, err := svc.ListByDonorAndDonee(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, a2.ID, both[0].ID)

	none, err := svc.ListByDonee(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListUnclaimed(t *testing.T) {
	svc, users, _, _ := newTestAnnouncementService()
	alice := mustCreateUser(t, users, "Alice", "alice@example.com")
	bob := mustCreateUser(t, users, "Bob", "bob@example.com")

	open, err := svc.Create(context.Background(), alice.ID, validProduct())
	require.NoError(t, err)
	taken, err := svc.Create(context.Background(), alice.ID, validProduct())
	require.NoError(t, err)
	_, err = svc.Claim(context.Background(), taken.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bob.ID, validProduct())
	require.NoError(t, err)

	unclaimed, err := svc.ListUnclaimed(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, unclaimed, 2)

	excluding, err := svc.ListUnclaimed(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, excluding, 1)
	assert.Equal(t, open.ID, excluding[0].ID)
}

func TestSearchWithoutElasticsearch(t *testing.T) {
	svc, _, _, _ := newTestAnnouncementService()

	hits, err := svc.Search(context.Background(), "coat", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// Full donor/donee exchange: offer, claim, notify, undo, reclaim, delete.
func TestExchangeLifecycle(t *testing.T) {
	svc, users, _, pub := newTestAnnouncementService()
	alice := mustCreateUser(t, users, "Alice", "alice@example.com")
	bob := mustCreateUser(t, users, "Bob", "bob@example.com")

	a, err := svc.Create(context.Background(), alice.ID, validProduct())
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), a.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.UndoClaim(context.Background(), a.ID)
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), a.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, pub.jobs, 2)

	require.NoError(t, svc.Delete(context.Background(), a.ID))

	_, err = svc.GetByID(context.Background(), a.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
