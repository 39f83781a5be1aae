package rest

import (
	"context"
	"sync"

	"github.com/binia1/hyobinwiki/internal/service/identity"
)

var _ identityService = &identityServiceMock{}

type identityServiceMock struct {
	SignInAnonymouslyFunc func(ctx context.Context) (*identity.Session, error)
	SignInWithTokenFunc   func(ctx context.Context, token string) (*identity.Session, error)

	calls struct {
		SignInAnonymously []struct {
			Ctx context.Context
		}
		SignInWithToken []struct {
			Ctx   context.Context
			Token string
		}
	}
	lockSignInAnonymously sync.RWMutex
	lockSignInWithToken   sync.RWMutex
}

func (mock *identityServiceMock) SignInAnonymously(ctx context.Context) (*identity.Session, error) {
	if mock.SignInAnonymouslyFunc == nil {
		panic("identityServiceMock.SignInAnonymouslyFunc: method is nil but identityService.SignInAnonymously was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockSignInAnonymously.Lock()
	mock.calls.SignInAnonymously = append(mock.calls.SignInAnonymously, callInfo)
	mock.lockSignInAnonymously.Unlock()
	return mock.SignInAnonymouslyFunc(ctx)
}

func (mock *identityServiceMock) SignInAnonymouslyCalls() []struct {
	Ctx context.Context
} {
	mock.lockSignInAnonymously.RLock()
	calls := mock.calls.SignInAnonymously
	mock.lockSignInAnonymously.RUnlock()
	return calls
}

func (mock *identityServiceMock) SignInWithToken(ctx context.Context, token string) (*identity.Session, error) {
	if mock.SignInWithTokenFunc == nil {
		panic("identityServiceMock.SignInWithTokenFunc: method is nil but identityService.SignInWithToken was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Token string
	}{Ctx: ctx, Token: token}
	mock.lockSignInWithToken.Lock()
	mock.calls.SignInWithToken = append(mock.calls.SignInWithToken, callInfo)
	mock.lockSignInWithToken.Unlock()
	return mock.SignInWithTokenFunc(ctx, token)
}

func (mock *identityServiceMock) SignInWithTokenCalls() []struct {
	Ctx   context.Context
	Token string
} {
	mock.lockSignInWithToken.RLock()
	calls := mock.calls.SignInWithToken
	mock.lockSignInWithToken.RUnlock()
	return calls
}
