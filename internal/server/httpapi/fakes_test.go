package httpapi

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/auth"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testSecret = []byte("test-secret")

type fakeUserService struct {
	register         func(ctx context.Context, username, email, password string) (*models.User, error)
	login            func(ctx context.Context, username, password string) (string, error)
	requestResetCode func(ctx context.Context, email string) (bool, error)
	resetPassword    func(ctx context.Context, email, code, newPassword string) (string, error)
}

func (f *fakeUserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return f.register(ctx, username, email, password)
}

func (f *fakeUserService) Login(ctx context.Context, username, password string) (string, error) {
	return f.login(ctx, username, password)
}

func (f *fakeUserService) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	return auth.ParseToken(token, testSecret)
}

func (f *fakeUserService) RequestResetCode(ctx context.Context, email string) (bool, error) {
	return f.requestResetCode(ctx, email)
}

func (f *fakeUserService) ResetPassword(ctx context.Context, email, code, newPassword string) (string, error) {
	return f.resetPassword(ctx, email, code, newPassword)
}

func newTestServer(t *testing.T, us UserService) (*HTTPServer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewHTTPServer("127.0.0.1:0", logging.NewZapLogger(zap.New(core)), us,
		[]string{"http://localhost"}, time.Second)
	s.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }
	return s, logs
}
