package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"social_media/internal/models"
	"social_media/internal/repository"
)

// MinPasswordLength 密碼最少字元數
const MinPasswordLength = 4

type AccountService struct {
	repos *repository.Repositories
	log   logrus.FieldLogger
}

func NewAccountService(repos *repository.Repositories, log logrus.FieldLogger) *AccountService {
	return &AccountService{repos: repos, log: log}
}

// Register 註冊新帳號
// 用戶名重複的檢查與寫入在同一個交易中；並行註冊同名帳號時由唯一索引擋下，同樣回傳 ErrConflict
func (s *AccountService) Register(ctx context.Context, candidate models.Account) (*models.Account, error) {
	if candidate.Username == "" {
		return nil, fmt.Errorf("%w: username must not be blank", ErrValidation)
	}
	if utf8.RuneCountInString(candidate.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	// id 一律由資料庫產生
	account := models.Account{
		Username: candidate.Username,
		Password: candidate.Password,
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		_, err := tx.Account.FindByUsername(ctx, account.Username)
		switch {
		case err == nil:
			return ErrConflict
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%w: lookup username: %v", ErrPersistence, err)
		}

		if err := tx.Account.Create(ctx, &account); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrConflict
			}
			return fmt.Errorf("%w: create account: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		err = asPersistence(err)
		entry := s.log.WithField("username", candidate.Username)
		if errors.Is(err, ErrPersistence) {
			entry.WithError(err).Error("register account failed")
		} else {
			entry.Info("username already taken")
		}
		return nil, err
	}

	s.log.WithField("account_id", account.AccountID).Info("account registered")
	return &account, nil
}

// Login 以用戶名與密碼完全比對登入
func (s *AccountService) Login(ctx context.Context, credentials models.Account) (*models.Account, error) {
	account, err := s.repos.Account.FindByUsernameAndPassword(ctx, credentials.Username, credentials.Password)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.WithField("username", credentials.Username).Debug("login rejected")
		return nil, ErrUnauthorized
	}
	if err != nil {
		s.log.WithError(err).Error("login lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return account, nil
}
