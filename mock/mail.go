package mock

import (
	"github.com/stretchr/testify/mock"
)

type MailService struct {
	mock.Mock
}

func (m *MailService) SendActivationEmail(to, activationKey string) error {
	return m.Called(to, activationKey).Error(0)
}

func (m *MailService) NotifyManagers(subject, body string) error {
	return m.Called(subject, body).Error(0)
}

func (m *MailService) Stop() error {
	return m.Called().Error(0)
}
