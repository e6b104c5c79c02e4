// Package dummymail captures sent emails in memory for test assertions.
package dummymail

import (
	"sync"

	"github.com/aulaviva/aulaviva/core"
)

type Service struct {
	conf *core.Config

	mu           sync.Mutex
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService(conf *core.Config) *Service {
	return &Service{conf: conf}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for _, msg := range messages {
		if err := msg.Render(svc.conf); err != nil {
			continue
		}
		if msg.HasRecipients() && msg.HasContent() {
			svc.SentMessages = append(svc.SentMessages, *msg)
		}
	}
}

func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.SentMessages = nil
}
