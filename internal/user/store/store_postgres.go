package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rngenius/internal/platform/database"
	"rngenius/internal/user/models"
	"rngenius/pkg/domain"
	"rngenius/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, u *models.User) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, refresh_token_hash)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.RefreshTokenHash,
	).Scan(&u.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, email = $4,
		        password_hash = $5, refresh_token_hash = $6
		 WHERE id = $1`,
		u.ID.Int64(), u.FirstName, u.LastName, u.Email, u.PasswordHash, u.RefreshTokenHash,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	return s.find(ctx, `id = $1`, id.Int64())
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(ctx, `email = $1`, email)
}

func (s *PostgresStore) find(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, password_hash, refresh_token_hash
		 FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.RefreshTokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
