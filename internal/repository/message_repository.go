package repository

import (
	"context"

	"social_media/internal/models"
	"social_media/internal/storage"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	FindAll(ctx context.Context) ([]models.Message, error)
	FindByPostedBy(ctx context.Context, accountID uint) ([]models.Message, error)
	UpdateText(ctx context.Context, id uint, text string) (int64, error)
	DeleteByID(ctx context.Context, id uint) (int64, error)
}

type messageRepository struct {
	baseRepository[models.Message]
}

func NewMessageRepository(db *storage.DB) MessageRepository {
	return &messageRepository{baseRepository: newBaseRepository[models.Message](db, "message_id")}
}

// FindByPostedBy 查詢某帳號發佈的所有訊息
func (r *messageRepository) FindByPostedBy(ctx context.Context, accountID uint) ([]models.Message, error) {
	return r.find(ctx, "posted_by = ?", accountID)
}

// UpdateText 只更新訊息內容，回傳受影響的筆數
func (r *messageRepository) UpdateText(ctx context.Context, id uint, text string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("message_id = ?", id).
		Update("message_text", text)
	return result.RowsAffected, result.Error
}
