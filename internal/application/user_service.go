package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/givecycle/givecycle/internal/domain/entity"
	repo "github.com/givecycle/givecycle/internal/domain/repository"
	"github.com/givecycle/givecycle/pkg/apperr"
	"github.com/givecycle/givecycle/pkg/helpers"
)

// UserService owns user CRUD and the credential flow. Redis holds the active
// session hash per user and is optional.
type UserService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, JWT: jwt, Redis: rdb, Logger: logger}
}

type RegisterInput struct {
	Name        string
	DateOfBirth string
	Contact     entity.Contact
	Password    string
}

// Register creates a user with a bcrypt-hashed credential. A contact email
// already in use is a conflict; the unique index on the stored document
// closes the check-then-insert race.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Contact.Email); err == nil {
		return nil, apperr.Conflict("email already in use")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hashing password", err)
	}

	u := &entity.User{
		Name:         in.Name,
		DateOfBirth:  in.DateOfBirth,
		Contact:      in.Contact,
		PasswordHash: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.List(ctx)
}

// UpdateContact replaces only the contact of an existing user.
func (s *UserService) UpdateContact(ctx context.Context, id string, contact entity.Contact) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Contact = contact
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the user outright. Announcements referencing the user as
// donor or donee keep their id references; dangling references are accepted
// behavior.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, helpers.SessionKey(id)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("session cleanup failed")
		}
	}
	return nil
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Authenticate validates email/password without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Validation("invalid credentials")
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperr.Validation("invalid credentials")
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records the session in
// redis under a fresh session id.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, apperr.Internal("generating access token", err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, apperr.Internal("generating refresh token", err)
	}

	if s.Redis != nil {
		key := helpers.SessionKey(u.ID)
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Contact.Email,
			"name":       u.Name,
			"sid":        sid,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Login authenticates and issues tokens in one step.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the session id and token pair for a valid refresh token.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", apperr.Validation("invalid refresh token")
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, "", apperr.Validation("invalid refresh token")
	}
	if s.Redis != nil {
		data, err := s.Redis.HGetAll(ctx, helpers.SessionKey(u.ID)).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", apperr.Validation("invalid refresh token")
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID, nil
}

// Logout drops the active session.
func (s *UserService) Logout(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, helpers.SessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session delete failed")
	}
}
