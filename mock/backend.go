package mock

import (
	"github.com/stretchr/testify/mock"

	"github.com/ntquang/mailreg"
)

type Backend struct {
	mock.Mock
}

func (m *Backend) Register(email string) (*mailreg.Subscriber, error) {
	args := m.Called(email)
	if sub := args.Get(0); sub != nil {
		return sub.(*mailreg.Subscriber), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) RegistrationAllowed() bool {
	return m.Called().Bool(0)
}

func (m *Backend) SuccessOutcome(s *mailreg.Subscriber) mailreg.Outcome {
	return m.Called(s).Get(0).(mailreg.Outcome)
}
