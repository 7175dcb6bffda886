package repository

import (
	"context"

	"social_media/internal/models"
	"social_media/internal/storage"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	FindByUsernameAndPassword(ctx context.Context, username, password string) (*models.Account, error)
	FindAll(ctx context.Context) ([]models.Account, error)
}

type accountRepository struct {
	baseRepository[models.Account]
}

func NewAccountRepository(db *storage.DB) AccountRepository {
	return &accountRepository{baseRepository: newBaseRepository[models.Account](db, "account_id")}
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *accountRepository) FindByUsernameAndPassword(ctx context.Context, username, password string) (*models.Account, error) {
	return r.first(ctx, "username = ? AND password = ?", username, password)
}
