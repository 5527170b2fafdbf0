package mocks

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
)

// MockJwtManager is a mock of the JWTManager.
// It is used to simulate token operations in tests.
type MockJwtManager struct {
	mock.Mock
}

func (m *MockJwtManager) GenerateJWT(claims jwt.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockJwtManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(jwt.Claims)
	return claims, args.Error(1)
}

func (m *MockJwtManager) GenerateClaims(userId, username, sessionId string) jwt.Claims {
	args := m.Called(userId, username, sessionId)
	return args.Get(0).(jwt.Claims)
}

func (m *MockJwtManager) GenerateActivationToken(userId, fingerprint string) (string, error) {
	args := m.Called(userId, fingerprint)
	return args.String(0), args.Error(1)
}

func (m *MockJwtManager) ValidateActivationToken(tokenString string) (string, string, error) {
	args := m.Called(tokenString)
	return args.String(0), args.String(1), args.Error(2)
}
