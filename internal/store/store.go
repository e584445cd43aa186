package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"localmart/internal/apperr"
	"localmart/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// uniqueViolation is the Postgres error code for a UNIQUE constraint hit.
const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateUser inserts a new user. Email is lowercased before storage so
// uniqueness is case-insensitive. Concurrent signups race past the
// service-level email check, so the constraint hit maps to the same
// field error here.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)

	query := `
		INSERT INTO users (name, email, password_hash, phone, role, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := s.db.GetContext(ctx, user, query,
		user.Name, user.Email, user.PasswordHash, user.Phone, user.Role,
		user.Latitude, user.Longitude)
	if isUniqueViolation(err) {
		return apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "email", Message: "is already registered"})
	}
	return err
}

// GetUserByEmail retrieves a user by email, nil if absent
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE email = $1", strings.ToLower(email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID, nil if absent
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
