package service

import (
	"github.com/sirupsen/logrus"

	"social_media/internal/repository"
)

type Services struct {
	Account *AccountService
	Message *MessageService
	Feed    *FeedHub
}

// NewServices 建立所有 service；relay 可為 nil
func NewServices(repos *repository.Repositories, relay Relay, log logrus.FieldLogger) *Services {
	feed := NewFeedHub(relay, log.WithField("component", "feed"))
	return &Services{
		Account: NewAccountService(repos, log.WithField("component", "account")),
		Message: NewMessageService(repos, feed, log.WithField("component", "message")),
		Feed:    feed,
	}
}
