package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/givecycle/givecycle/internal/domain/entity"
	repo "github.com/givecycle/givecycle/internal/domain/repository"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/helpers"
	"github.com/givecycle/givecycle/pkg/mailer"
)

// ClaimPublisher queues claim-notification jobs. Satisfied by
// helpers.RabbitPublisher.
type ClaimPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AnnouncementService owns the announcement lifecycle: create, read, filter,
// product update, claim, undo-claim and delete. Redis, RabbitMQ, ES and GCS
// are optional; a nil client disables the corresponding side effect.
type AnnouncementService struct {
	Announcements repo.AnnouncementRepository
	Users         repo.UserRepository
	Publisher     ClaimPublisher
	ES            *elasticsearch.Client
	ESIndex       string
	GCS           *storage.Client
	GCSBucket     string
	Logger        *logrus.Logger
}

func NewAnnouncementService(announcements repo.AnnouncementRepository, users repo.UserRepository, publisher ClaimPublisher, es *elasticsearch.Client, esIndex string, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *AnnouncementService {
	return &AnnouncementService{
		Announcements: announcements,
		Users:         users,
		Publisher:     publisher,
		ES:            es,
		ESIndex:       esIndex,
		GCS:           gcs,
		GCSBucket:     gcsBucket,
		Logger:        logger,
	}
}

// ProductInput carries the four product fields of a create or update request.
type ProductInput struct {
	Name        string
	Description string
	PhotoURL    string
	Category    string
}

const (
	maxProductNameLen        = 30
	maxProductDescriptionLen = 500
	maxProductCategoryLen    = 255
)

// validateProduct checks the product fields explicitly: every field must be
// non-blank after trimming and within its length bound. Returns a
// field→message map, nil when valid.
func validateProduct(in ProductInput) map[string]string {
	violations := map[string]string{}

	checkBlank := func(field, value string) bool {
		if strings.TrimSpace(value) == "" {
			violations[field] = "is mandatory and cannot be blank"
			return false
		}
		return true
	}
	if checkBlank("product_name", in.Name) && len(in.Name) > maxProductNameLen {
		violations["product_name"] = fmt.Sprintf("must be less than or equal to %d characters", maxProductNameLen)
	}
	if checkBlank("product_description", in.Description) && len(in.Description) > maxProductDescriptionLen {
		violations["product_description"] = fmt.Sprintf("must be less than or equal to %d characters", maxProductDescriptionLen)
	}
	checkBlank("product_photo_url", in.PhotoURL)
	if checkBlank("product_category", in.Category) && len(in.Category) > maxProductCategoryLen {
		violations["product_category"] = fmt.Sprintf("must be less than or equal to %d characters", maxProductCategoryLen)
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}

// Create validates the product and the donor reference, then persists a new
// unclaimed announcement with the creation timestamp set once.
func (s *AnnouncementService) Create(ctx context.Context, donorID string, in ProductInput) (*entity.Announcement, error) {
	if violations := validateProduct(in); violations != nil {
		return nil, apperr.ValidationFields("all product fields must be filled", violations)
	}

	donor, err := s.Users.GetByID(ctx, donorID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Validation("user donor ID does not exist")
		}
		return nil, err
	}

	a := &entity.Announcement{
		Product: entity.Product{
			Name:        in.Name,
			Description: in.Description,
			PhotoURL:    in.PhotoURL,
			Category:    in.Category,
		},
		DonorID:   donor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Announcements.Create(ctx, a); err != nil {
		return nil, err
	}

	_ = s.indexAnnouncement(ctx, a)
	return a, nil
}

func (s *AnnouncementService) GetByID(ctx context.Context, id string) (*entity.Announcement, error) {
	return s.Announcements.GetByID(ctx, id)
}

func (s *AnnouncementService) List(ctx context.Context) ([]*entity.Announcement, error) {
	return s.Announcements.List(ctx)
}

// Filter queries return an empty list when nothing matches; 404 is reserved
// for single-entity lookups.
func (s *AnnouncementService) ListByDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error) {
	return s.Announcements.ListByDonor(ctx, donorID)
}

func (s *AnnouncementService) ListByDonee(ctx context.Context, doneeID string) ([]*entity.Announcement, error) {
	return s.Announcements.ListByDonee(ctx, doneeID)
}

func (s *AnnouncementService) ListByDonorAndDonee(ctx context.Context, donorID, doneeID string) ([]*entity.Announcement, error) {
	return s.Announcements.ListByDonorAndDonee(ctx, donorID, doneeID)
}

// ListUnclaimed returns open announcements, optionally excluding those posted
// by excludeDonorID so users do not browse their own offers.
func (s *AnnouncementService) ListUnclaimed(ctx context.Context, excludeDonorID string) ([]*entity.Announcement, error) {
	if excludeDonorID == "" {
		return s.Announcements.ListUnclaimed(ctx)
	}
	return s.Announcements.ListUnclaimedExcludingDonor(ctx, excludeDonorID)
}

// UpdateProduct replaces only the product of an existing announcement; donor,
// donee and the creation timestamp are untouched.
func (s *AnnouncementService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Announcement, error) {
	if violations := validateProduct(in); violations != nil {
		return nil, apperr.ValidationFields("product details are missing or invalid", violations)
	}

	a, err := s.Announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Product = entity.Product{
		Name:        in.Name,
		Description: in.Description,
		PhotoURL:    in.PhotoURL,
		Category:    in.Category,
	}
	if err := s.Announcements.Update(ctx, a); err != nil {
		return nil, err
	}

	_ = s.indexAnnouncement(ctx, a)
	return a, nil
}

// Claim sets the donee on an unclaimed announcement. The donee must exist,
// must differ from the donor, and claiming an already-claimed announcement is
// rejected instead of overwriting the donee. On success a notification job
// for the donor is queued best-effort.
func (s *AnnouncementService) Claim(ctx context.Context, id, doneeID string) (*entity.Announcement, error) {
	a, err := s.Announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	donee, err := s.Users.GetByID(ctx, doneeID)
	if err != nil {
		return nil, err
	}
	if a.DonorID == donee.ID {
		return nil, apperr.Validation("the donor and donee cannot be the same")
	}
	if a.IsClaimed() {
		return nil, apperr.Validation("announcement is already claimed")
	}

	a.DoneeID = donee.ID
	if err := s.Announcements.Update(ctx, a); err != nil {
		return nil, err
	}

	s.notifyDonor(ctx, a, donee)
	_ = s.indexAnnouncement(ctx, a)
	return a, nil
}

// UndoClaim clears the donee again. Undoing an unclaimed announcement is a
// validation failure and a no-op.
func (s *AnnouncementService) UndoClaim(ctx context.Context, id string) (*entity.Announcement, error) {
	a, err := s.Announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsClaimed() {
		return nil, apperr.Validation("announcement already has no donee")
	}

	a.DoneeID = ""
	if err := s.Announcements.Update(ctx, a); err != nil {
		return nil, err
	}

	_ = s.indexAnnouncement(ctx, a)
	return a, nil
}

// Delete removes the announcement and re-reads it to confirm removal, failing
// with an internal error when the record is still present.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if _, err := s.Announcements.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.Announcements.Delete(ctx, id); err != nil {
		return err
	}

	_, err := s.Announcements.GetByID(ctx, id)
	switch {
	case err == nil:
		return apperr.Internal("announcement still exists after deletion", nil)
	case apperr.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// AttachPhoto uploads a product photo to object storage and rewrites the
// announcement's photo URL.
func (s *AnnouncementService) AttachPhoto(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.Announcement, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, apperr.Internal("object storage not configured", nil)
	}
	a, err := s.Announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("products", a.ID, helpers.NewObjectID()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, apperr.Internal("uploading product photo", err)
	}

	a.Product.PhotoURL = url
	if err := s.Announcements.Update(ctx, a); err != nil {
		return nil, err
	}
	_ = s.indexAnnouncement(ctx, a)
	return a, nil
}

func (s *AnnouncementService) notifyDonor(ctx context.Context, a *entity.Announcement, donee *entity.User) {
	if s.Publisher == nil {
		return
	}
	donor, err := s.Users.GetByID(ctx, a.DonorID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("announcement_id", a.ID).Warn("donor lookup for claim notification failed")
		}
		return
	}
	job := mailer.ClaimJob{
		To:             donor.Contact.Email,
		DonorName:      donor.Name,
		DoneeName:      donee.Name,
		ProductName:    a.Product.Name,
		AnnouncementID: a.ID,
		ClaimedAt:      time.Now().UTC(),
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("announcement_id", a.ID).Warn("claim notification publish failed")
	}
}

func (s *AnnouncementService) indexAnnouncement(ctx context.Context, a *entity.Announcement) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":          a.ID,
		"name":        a.Product.Name,
		"description": a.Product.Description,
		"category":    a.Product.Category,
		"donor_id":    a.DonorID,
		"donee_id":    a.DoneeID,
		"claimed":     a.IsClaimed(),
		"created_at":  a.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("announcement_id", a.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("announcement_id", a.ID).Warn("es index response error")
	}
	return nil
}

// Search runs a multi_match query over product name, description and
// category. Returns an empty result when Elasticsearch is not configured.
func (s *AnnouncementService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "description", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, apperr.Internal("searching announcements", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Internal("decoding search response", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
