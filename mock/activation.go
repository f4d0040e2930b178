package mock

import (
	"github.com/stretchr/testify/mock"

	"github.com/ntquang/mailreg"
)

type ActivationService struct {
	mock.Mock
}

func (m *ActivationService) Activate(key string) (*mailreg.Subscriber, error) {
	args := m.Called(key)
	if sub := args.Get(0); sub != nil {
		return sub.(*mailreg.Subscriber), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivationService) ActivateByEmail(email string) (*mailreg.Subscriber, error) {
	args := m.Called(email)
	if sub := args.Get(0); sub != nil {
		return sub.(*mailreg.Subscriber), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivationService) Deactivate(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *ActivationService) ResendActivationEmail(email string) error {
	return m.Called(email).Error(0)
}

func (m *ActivationService) DeleteExpiredSubscribers() error {
	return m.Called().Error(0)
}
