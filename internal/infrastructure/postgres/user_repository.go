package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givecycle/givecycle/internal/domain/entity"
	"github.com/givecycle/givecycle/internal/domain/repository"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/helpers"
)

// unique_violation, raised by the expression index on contact email
const pgUniqueViolation = "23505"

// UserRepository stores users as JSONB documents addressed by a 24-hex id.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.ID = helpers.NewObjectID()
	u.Version = 1
	doc, err := json.Marshal(u)
	if err != nil {
		return apperr.Internal("encoding user document", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, doc)
		VALUES ($1, $2)
		RETURNING created_at, updated_at
	`, u.ID, doc)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("email already in use")
		}
		return apperr.Internal("creating user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !helpers.IsObjectID(id) {
		return nil, apperr.Validation("invalid ID format")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, doc, version, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("reading user", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doc, version, created_at, updated_at
		FROM users
		WHERE doc->'contact'->>'email' = $1
	`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("reading user", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doc, version, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, apperr.Internal("listing users", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Internal("reading user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("listing users", err)
	}
	return users, nil
}

// Update writes the document back conditionally on the version that was read,
// so two concurrent read-modify-write sequences cannot silently overwrite
// each other.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if !helpers.IsObjectID(u.ID) {
		return apperr.Validation("invalid ID format")
	}
	doc, err := json.Marshal(u)
	if err != nil {
		return apperr.Internal("encoding user document", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET doc = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
	`, doc, u.ID, u.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("email already in use")
		}
		return apperr.Internal("updating user", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, u.ID); apperr.IsNotFound(err) {
			return apperr.NotFound("user not found")
		}
		return apperr.Conflict("user was modified concurrently")
	}
	u.Version++
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !helpers.IsObjectID(id) {
		return apperr.Validation("invalid ID format")
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("deleting user", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		id  string
		doc []byte
		u   entity.User
	)
	if err := row.Scan(&id, &doc, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, err
	}
	u.ID = id
	return &u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
