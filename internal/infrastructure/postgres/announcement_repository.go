package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/internal/domain/repository"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/helpers"
)

// AnnouncementRepository stores announcements as JSONB documents addressed by
// a 24-hex id. An unclaimed announcement has no donee_id key in its document,
// so the unclaimed filter is a NULL check on the extracted field.
type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

const announcementColumns = `id, doc, version, created_at, updated_at`

func (r *AnnouncementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	a.ID = helpers.NewObjectID()
	a.Version = 1
	doc, err := json.Marshal(a)
	if err != nil {
		return apperr.Internal("encoding announcement document", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO announcements (id, doc, created_at)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, a.ID, doc, a.CreatedAt)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return apperr.Internal("creating announcement", err)
	}
	return nil
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*entity.Announcement, error) {
	if !helpers.IsObjectID(id) {
		return nil, apperr.Validation("invalid ID format")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE id = $1
	`, id)
	a, err := scanAnnouncement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("announcement not found")
	}
	if err != nil {
		return nil, apperr.Internal("reading announcement", err)
	}
	return a, nil
}

func (r *AnnouncementRepository) List(ctx context.Context) ([]*entity.Announcement, error) {
	return r.list(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		ORDER BY created_at DESC
	`)
}

func (r *AnnouncementRepository) ListByDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(donorID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return r.list(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE doc->>'donor_id' = $1
		ORDER BY created_at DESC
	`, donorID)
}

func (r *AnnouncementRepository) ListByDonee(ctx context.Context, doneeID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(doneeID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return r.list(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE doc->>'donee_id' = $1
		ORDER BY created_at DESC
	`, doneeID)
}

func (r *AnnouncementRepository) ListByDonorAndDonee(ctx context.Context, donorID, doneeID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(donorID) || !helpers.IsObjectID(doneeID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return r.list(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE doc->>'donor_id' = $1 AND doc->>'donee_id' = $2
		ORDER BY created_at DESC
	`, donorID, doneeID)
}

func (r *AnnouncementRepository) ListUnclaimed(ctx context.Context) ([]*entity.Announcement, error) {
	return r.list(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE doc->>'donee_id' IS NULL
		ORDER BY created_at DESC
	`)
}

func (r *AnnouncementRepository) ListUnclaimedExcludingDonor(ctx context.Context, donorID string) ([]*entity.Announcement, error) {
	if !helpers.IsObjectID(donorID) {
		return nil, apperr.Validation("invalid ID format")
	}
	return r.list(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE doc->>'donee_id' IS NULL AND doc->>'donor_id' <> $1
		ORDER BY created_at DESC
	`, donorID)
}

// Update is conditional on the version that was read; a lost race surfaces as
// a conflict instead of a silent overwrite.
func (r *AnnouncementRepository) Update(ctx context.Context, a *entity.Announcement) error {
	if !helpers.IsObjectID(a.ID) {
		return apperr.Validation("invalid ID format")
	}
	doc, err := json.Marshal(a)
	if err != nil {
		return apperr.Internal("encoding announcement document", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE announcements
		SET doc = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
	`, doc, a.ID, a.Version)
	if err != nil {
		return apperr.Internal("updating announcement", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, a.ID); apperr.IsNotFound(err) {
			return apperr.NotFound("announcement not found")
		}
		return apperr.Conflict("announcement was modified concurrently")
	}
	a.Version++
	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	if !helpers.IsObjectID(id) {
		return apperr.Validation("invalid ID format")
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("deleting announcement", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("announcement not found")
	}
	return nil
}

func (r *AnnouncementRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Announcement, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal("listing announcements", err)
	}
	defer rows.Close()

	announcements := make([]*entity.Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, apperr.Internal("reading announcement", err)
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("listing announcements", err)
	}
	return announcements, nil
}

func scanAnnouncement(row pgx.Row) (*entity.Announcement, error) {
	var (
		id  string
		doc []byte
		a   entity.Announcement
	)
	if err := row.Scan(&id, &doc, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

var _ repository.AnnouncementRepository = (*AnnouncementRepository)(nil)
