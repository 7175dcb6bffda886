package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"social_media/internal/models"
	"social_media/internal/repository"
)

// Publisher 接收訊息異動事件，例如 FeedHub
type Publisher interface {
	Publish(ctx context.Context, event models.MessageEvent)
}

type MessageService struct {
	repos *repository.Repositories
	feed  Publisher
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewMessageService(repos *repository.Repositories, feed Publisher, log logrus.FieldLogger) *MessageService {
	return &MessageService{
		repos: repos,
		feed:  feed,
		log:   log,
		now:   time.Now,
	}
}

func validateText(text string) error {
	if text == "" {
		return fmt.Errorf("%w: message text must not be blank", ErrValidation)
	}
	if utf8.RuneCountInString(text) > models.MaxMessageTextLength {
		return fmt.Errorf("%w: message text exceeds %d characters", ErrValidation, models.MaxMessageTextLength)
	}
	return nil
}

// Create 發佈新訊息，發佈者必須是已存在的帳號
func (s *MessageService) Create(ctx context.Context, candidate models.Message) (*models.Message, error) {
	if err := validateText(candidate.MessageText); err != nil {
		return nil, err
	}

	message := models.Message{
		PostedBy:        candidate.PostedBy,
		MessageText:     candidate.MessageText,
		TimePostedEpoch: candidate.TimePostedEpoch,
	}
	if message.TimePostedEpoch == 0 {
		message.TimePostedEpoch = s.now().Unix()
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Account.FindByID(ctx, message.PostedBy); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: account %d does not exist", ErrValidation, message.PostedBy)
			}
			return fmt.Errorf("%w: lookup poster: %v", ErrPersistence, err)
		}
		if err := tx.Message.Create(ctx, &message); err != nil {
			return fmt.Errorf("%w: create message: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(err, "create message failed", logrus.Fields{"posted_by": candidate.PostedBy})
	}

	s.log.WithFields(logrus.Fields{
		"message_id": message.MessageID,
		"posted_by":  message.PostedBy,
	}).Info("message created")
	s.publish(ctx, models.MessageCreated, message)
	return &message, nil
}

// ListAll 回傳全部訊息，沒有資料時回傳空 slice
func (s *MessageService) ListAll(ctx context.Context) ([]models.Message, error) {
	messages, err := s.repos.Message.FindAll(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: %v", ErrPersistence, err), "list messages failed", nil)
	}
	return messages, nil
}

// ListByAccount 回傳某帳號發佈的訊息
func (s *MessageService) ListByAccount(ctx context.Context, accountID uint) ([]models.Message, error) {
	messages, err := s.repos.Message.FindByPostedBy(ctx, accountID)
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: %v", ErrPersistence, err), "list account messages failed",
			logrus.Fields{"account_id": accountID})
	}
	return messages, nil
}

// GetByID 查詢單一訊息；不存在時回傳 nil, nil
func (s *MessageService) GetByID(ctx context.Context, messageID uint) (*models.Message, error) {
	message, err := s.repos.Message.FindByID(ctx, messageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(fmt.Errorf("%w: %v", ErrPersistence, err), "get message failed",
			logrus.Fields{"message_id": messageID})
	}
	return message, nil
}

// UpdateText 更新訊息內容，回傳更新的筆數
func (s *MessageService) UpdateText(ctx context.Context, messageID uint, text string) (int64, error) {
	if err := validateText(text); err != nil {
		return 0, err
	}

	var updated models.Message
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Message.FindByID(ctx, messageID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: lookup message: %v", ErrPersistence, err)
		}
		// mysql 在內容不變時回報 0 筆受影響，因此以查詢結果判斷是否存在
		if _, err := tx.Message.UpdateText(ctx, messageID, text); err != nil {
			return fmt.Errorf("%w: update message: %v", ErrPersistence, err)
		}
		updated = *existing
		updated.MessageText = text
		return nil
	})
	if err != nil {
		return 0, s.fail(err, "update message failed", logrus.Fields{"message_id": messageID})
	}

	s.publish(ctx, models.MessageUpdated, updated)
	return 1, nil
}

// DeleteByID 刪除訊息，回傳刪除的筆數；訊息不存在不算錯誤
func (s *MessageService) DeleteByID(ctx context.Context, messageID uint) (int64, error) {
	var (
		removed models.Message
		count   int64
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Message.FindByID(ctx, messageID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: lookup message: %v", ErrPersistence, err)
		}
		count, err = tx.Message.DeleteByID(ctx, messageID)
		if err != nil {
			return fmt.Errorf("%w: delete message: %v", ErrPersistence, err)
		}
		removed = *existing
		return nil
	})
	if err != nil {
		return 0, s.fail(err, "delete message failed", logrus.Fields{"message_id": messageID})
	}

	if count > 0 {
		s.publish(ctx, models.MessageDeleted, removed)
	}
	return count, nil
}

func (s *MessageService) publish(ctx context.Context, eventType models.MessageEventType, message models.Message) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, models.MessageEvent{Type: eventType, Message: message})
}

// fail 記錄錯誤並回傳分類後的錯誤；只有 ErrPersistence 以 error 等級記錄
func (s *MessageService) fail(err error, msg string, fields logrus.Fields) error {
	err = asPersistence(err)
	entry := s.log.WithFields(fields)
	if errors.Is(err, ErrPersistence) {
		entry.WithError(err).Error(msg)
	} else {
		entry.WithError(err).Debug(msg)
	}
	return err
}
