package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/reelscore-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

const userColumns = `id, username, email, password, role, verified, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// FindConflicts returns which of username and email are already registered.
func (r *UserRepository) FindConflicts(ctx context.Context, username, email string) ([]string, error) {
	query := `SELECT COALESCE(bool_or(username = $1), FALSE), COALESCE(bool_or(email = $2), FALSE)
			  FROM users WHERE username = $1 OR email = $2`

	var usernameTaken, emailTaken bool
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&usernameTaken, &emailTaken); err != nil {
		return nil, fmt.Errorf("failed to check user conflicts: %w", err)
	}

	var fields []string
	if usernameTaken {
		fields = append(fields, model.FieldUsername)
	}
	if emailTaken {
		fields = append(fields, model.FieldEmail)
	}
	return fields, nil
}

func (r *UserRepository) Create(ctx context.Context, params model.NewUser) (model.User, error) {
	query := `INSERT INTO users (id, username, email, password, role, verified)
			  VALUES ($1, $2, $3, $4, $5, FALSE)
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query,
		uuid.New(), params.Username, params.Email, params.PasswordHash, string(model.RoleUser),
	))
	if err != nil {
		if field, ok := uniqueViolationField(err); ok {
			fields := []string{field}
			// Ask again so that a username+email double conflict is reported as such.
			if all, ferr := r.FindConflicts(ctx, params.Username, params.Email); ferr == nil && len(all) > 0 {
				fields = all
			}
			return model.User{}, &model.ConflictError{Fields: fields}
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `UPDATE users SET verified = TRUE, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to set user verified: %w", err)
	}

	return user, nil
}

func (r *UserRepository) UpdateFields(ctx context.Context, username string, patch model.UserPatch) (model.User, error) {
	query := `UPDATE users
			  SET email = COALESCE($2, email), password = COALESCE($3, password), updated_at = NOW()
			  WHERE username = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, username, patch.Email, patch.PasswordHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if field, ok := uniqueViolationField(err); ok {
			return model.User{}, &model.ConflictError{Fields: []string{field}}
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUnverifiedBefore removes users that never verified their email and
// were created before the given time. Their sessions go with them.
func (r *UserRepository) DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM users WHERE verified = FALSE AND created_at < $1`

	cmd, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unverified users: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// DeleteByUsername removes a user. Refresh tokens cascade.
func (r *UserRepository) DeleteByUsername(ctx context.Context, username string) error {
	const query = `DELETE FROM users WHERE username = $1`

	cmd, err := r.db.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		role string
	)
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&role, &user.Verified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	user.Role = model.Role(role)
	return user, nil
}

func uniqueViolationField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return "", false
	}
	switch pgErr.ConstraintName {
	case constraintUsername:
		return model.FieldUsername, true
	case constraintEmail:
		return model.FieldEmail, true
	default:
		return "", true
	}
}
