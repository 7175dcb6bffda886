package repository

import (
	"context"

	"social_media/internal/storage"
)

type Repositories struct {
	Account AccountRepository
	Message MessageRepository

	db *storage.DB
}

func NewRepositories(db *storage.DB) *Repositories {
	return &Repositories{
		Account: NewAccountRepository(db),
		Message: NewMessageRepository(db),
		db:      db,
	}
}

// Transaction 在同一個交易中執行 fn，傳入的 repos 皆綁定該交易；
// fn 內只能使用傳入的 repos，否則 sqlite 單連線時會互相等待
func (r *Repositories) Transaction(ctx context.Context, fn func(repos *Repositories) error) error {
	return r.db.Transaction(ctx, func(tx *storage.DB) error {
		return fn(NewRepositories(tx))
	})
}
