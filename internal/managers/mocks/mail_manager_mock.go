package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendActivationMail(email, username, activationLink string) error {
	args := m.Called(email, username, activationLink)
	return args.Error(0)
}

func (m *MockMailManager) SendConfirmationMail(email, username string) error {
	args := m.Called(email, username)
	return args.Error(0)
}

func (m *MockMailManager) SendNewEntryMail(recipients []string, title, entryLink string) error {
	args := m.Called(recipients, title, entryLink)
	return args.Error(0)
}
