package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password)
         VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.Password).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userName).Scan(&user.ID, &user.UserName, &user.Email, &user.Password)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.UserName, &user.Email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetResetState loads the reset code columns of the user with the given email.
// Inside a transaction the row stays locked until commit, so a code can only
// be redeemed once.
func (r *PostgresRepository) GetResetState(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, reset_code, reset_code_expires FROM users
		 WHERE email = $1
		 FOR UPDATE
		 `

	var (
		code    sql.NullString
		expires sql.NullTime
	)

	user := &models.User{Email: email}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.UserName, &code, &expires)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if code.Valid && expires.Valid {
		user.ResetCode = &code.String
		user.ResetCodeExpires = &expires.Time
	}

	return user, nil
}

// SetResetCode stores a reset code for the user with the given email and
// returns the number of rows touched (0 when no such user exists).
func (r *PostgresRepository) SetResetCode(ctx context.Context, email, code string, expires time.Time) (int64, error) {
	query :=
		`UPDATE users SET reset_code = $1, reset_code_expires = $2
		 WHERE email = $3
		 `

	res, err := r.db.ExecContext(ctx, query, code, expires, email)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

// ResetPassword replaces the password hash and clears the reset code.
func (r *PostgresRepository) ResetPassword(ctx context.Context, email, passwordHash string) (int64, error) {
	query :=
		`UPDATE users SET password = $1, reset_code = NULL, reset_code_expires = NULL
		 WHERE email = $2
		 `

	res, err := r.db.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
