package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophaccount/internal/common"
	"github.com/dmitrijs2005/gophaccount/internal/dbx"
	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/config"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	usersrepo "github.com/dmitrijs2005/gophaccount/internal/server/repositories/users"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memUsers is an in-memory users.Repository.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.User

	// forced failures
	createErr error
	getErr    error
	setErr    error
	resetErr  error
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[int64]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, r := range m.rows {
		if r.UserName == u.UserName || r.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.nextID++
	row := *u
	row.ID = m.nextID
	row.CreatedAt = time.Now()
	m.rows[row.ID] = &row
	out := row
	return &out, nil
}

func (m *memUsers) find(pred func(*models.User) bool) *models.User {
	for _, r := range m.rows {
		if pred(r) {
			return r
		}
	}
	return nil
}

func (m *memUsers) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r := m.find(func(u *models.User) bool { return u.UserName == login })
	if r == nil {
		return nil, common.ErrorNotFound
	}
	out := *r
	return &out, nil
}

func (m *memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(func(u *models.User) bool { return u.Email == email })
	if r == nil {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: r.ID, UserName: r.UserName, Email: r.Email}, nil
}

func (m *memUsers) GetResetState(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r := m.find(func(u *models.User) bool { return u.Email == email })
	if r == nil {
		return nil, common.ErrorNotFound
	}
	out := *r
	return &out, nil
}

func (m *memUsers) SetResetCode(ctx context.Context, email, code string, expires time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return 0, m.setErr
	}
	r := m.find(func(u *models.User) bool { return u.Email == email })
	if r == nil {
		return 0, nil
	}
	r.ResetCode = &code
	r.ResetCodeExpires = &expires
	return 1, nil
}

func (m *memUsers) ResetPassword(ctx context.Context, email, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return 0, m.resetErr
	}
	r := m.find(func(u *models.User) bool { return u.Email == email })
	if r == nil {
		return 0, nil
	}
	r.Password = hash
	r.ResetCode = nil
	r.ResetCodeExpires = nil
	return 1, nil
}

func (m *memUsers) byEmail(email string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.find(func(u *models.User) bool { return u.Email == email })
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

type fakeRepoManager struct {
	u usersrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }

type testEnv struct {
	svc   *UserService
	users *memUsers
	mock  sqlmock.Sqlmock
	logs  *observer.ObservedLogs
	clock *time.Time
}

func newTestEnv(t *testing.T, cfgFn ...func(*config.Config)) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	for _, fn := range cfgFn {
		fn(cfg)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	users := newMemUsers()

	svc := NewUserService(db, &fakeRepoManager{u: users}, cfg, logging.NewZapLogger(zap.New(core)),
		WithClock(func() time.Time { return clock }))

	return &testEnv{svc: svc, users: users, mock: mock, logs: logs, clock: &clock}
}
