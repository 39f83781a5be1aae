package identity

import (
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

var _ tokenManager = &tokenManagerMock{}

type tokenManagerMock struct {
	GenerateTokenFunc func(id domain.Identity) (string, error)
	ValidateTokenFunc func(token string) (domain.Identity, error)

	calls struct {
		GenerateToken []struct {
			ID domain.Identity
		}
		ValidateToken []struct {
			Token string
		}
	}
	lockGenerateToken sync.RWMutex
	lockValidateToken sync.RWMutex
}

func (mock *tokenManagerMock) GenerateToken(id domain.Identity) (string, error) {
	if mock.GenerateTokenFunc == nil {
		panic("tokenManagerMock.GenerateTokenFunc: method is nil but tokenManager.GenerateToken was just called")
	}
	callInfo := struct {
		ID domain.Identity
	}{ID: id}
	mock.lockGenerateToken.Lock()
	mock.calls.GenerateToken = append(mock.calls.GenerateToken, callInfo)
	mock.lockGenerateToken.Unlock()
	return mock.GenerateTokenFunc(id)
}

func (mock *tokenManagerMock) GenerateTokenCalls() []struct {
	ID domain.Identity
} {
	mock.lockGenerateToken.RLock()
	calls := mock.calls.GenerateToken
	mock.lockGenerateToken.RUnlock()
	return calls
}

func (mock *tokenManagerMock) ValidateToken(token string) (domain.Identity, error) {
	if mock.ValidateTokenFunc == nil {
		panic("tokenManagerMock.ValidateTokenFunc: method is nil but tokenManager.ValidateToken was just called")
	}
	callInfo := struct {
		Token string
	}{Token: token}
	mock.lockValidateToken.Lock()
	mock.calls.ValidateToken = append(mock.calls.ValidateToken, callInfo)
	mock.lockValidateToken.Unlock()
	return mock.ValidateTokenFunc(token)
}

func (mock *tokenManagerMock) ValidateTokenCalls() []struct {
	Token string
} {
	mock.lockValidateToken.RLock()
	calls := mock.calls.ValidateToken
	mock.lockValidateToken.RUnlock()
	return calls
}
