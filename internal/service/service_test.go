package service

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	"social_media/internal/models"
	"social_media/internal/repository"
	"social_media/internal/storage"
	"social_media/pkg/config"
	"social_media/pkg/logger"
)

func newTestRepositories(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := storage.Open(config.DBConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return repository.NewRepositories(db)
}

// newMockRepositories 以 sqlmock 模擬 postgres，用來驗證資料庫失敗的路徑
func newMockRepositories(t *testing.T) (*repository.Repositories, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := storage.OpenDialector(postgres.New(postgres.Config{Conn: sqlDB}), nil)
	require.NoError(t, err)
	return repository.NewRepositories(db), mock
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.MessageEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.MessageEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []models.MessageEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.MessageEvent(nil), p.events...)
}

func registerAccount(t *testing.T, repos *repository.Repositories, username string) *models.Account {
	t.Helper()
	svc := NewAccountService(repos, logger.Discard())
	account, err := svc.Register(context.Background(), models.Account{Username: username, Password: "password"})
	require.NoError(t, err)
	return account
}
