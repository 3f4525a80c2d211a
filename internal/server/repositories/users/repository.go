package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetResetState(ctx context.Context, email string) (*models.User, error)
	SetResetCode(ctx context.Context, email, code string, expires time.Time) (int64, error)
	ResetPassword(ctx context.Context, email, passwordHash string) (int64, error)
}
