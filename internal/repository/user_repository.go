package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/ehdrbdndns/Hagah-Backend/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateIdentity is returned when an account already exists
	// for a (provider, provider_id) pair. The unique constraint on the
	// users table is the source of truth, so two concurrent signups
	// racing on the same identity get exactly one success.
	ErrDuplicateIdentity = errors.New("account already exists for this provider identity")
)

const pgUniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (uuid.UUID, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	query := `INSERT INTO users (provider, provider_id, email, name, profile_image_url) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query, user.Provider, user.ProviderID, user.Email, user.Name, user.ProfileImageURL).Scan(&newID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return uuid.Nil, ErrDuplicateIdentity
		}
		return uuid.Nil, err
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error) {
	var user model.User
	query := `SELECT id, provider, provider_id, email, name, profile_image_url, created_at, updated_at FROM users WHERE provider = $1 AND provider_id = $2`
	err := r.db.GetContext(ctx, &user, query, provider, providerID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT id, provider, provider_id, email, name, profile_image_url, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}
