package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"social_media/internal/storage"
)

var (
	// ErrNotFound 查無資料
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey 違反唯一索引
	ErrDuplicateKey = errors.New("duplicate key")
)

// baseRepository 提供依主鍵的通用 CRUD，供各實體的 repository 內嵌
type baseRepository[T any] struct {
	db *storage.DB
	pk string
}

func newBaseRepository[T any](db *storage.DB, pk string) baseRepository[T] {
	return baseRepository[T]{db: db, pk: pk}
}

func (r *baseRepository[T]) Create(ctx context.Context, model *T) error {
	err := r.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func (r *baseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	return r.first(ctx, r.pk+" = ?", id)
}

// FindAll 依主鍵遞增排序回傳全部資料，沒有資料時回傳空 slice
func (r *baseRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.find(ctx, "")
}

// DeleteByID 回傳實際刪除的筆數
func (r *baseRepository[T]) DeleteByID(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Where(r.pk+" = ?", id).Delete(new(T))
	return result.RowsAffected, result.Error
}

func (r *baseRepository[T]) first(ctx context.Context, query string, args ...interface{}) (*T, error) {
	var model T
	err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *baseRepository[T]) find(ctx context.Context, query string, args ...interface{}) ([]T, error) {
	models := make([]T, 0)
	tx := r.db.WithContext(ctx)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Order(r.pk + " asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return models, nil
}
