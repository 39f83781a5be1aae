package wiki

import (
	"context"
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

var _ articleWriter = &articleWriterMock{}

type articleWriterMock struct {
	UpsertFunc func(ctx context.Context, title string, patch domain.ArticlePatch) error
	UpdateFunc func(ctx context.Context, title string, patch domain.ArticlePatch) error

	calls struct {
		Upsert []struct {
			Ctx   context.Context
			Title string
			Patch domain.ArticlePatch
		}
		Update []struct {
			Ctx   context.Context
			Title string
			Patch domain.ArticlePatch
		}
	}
	lockUpsert sync.RWMutex
	lockUpdate sync.RWMutex
}

func (mock *articleWriterMock) Upsert(ctx context.Context, title string, patch domain.ArticlePatch) error {
	if mock.UpsertFunc == nil {
		panic("articleWriterMock.UpsertFunc: method is nil but articleWriter.Upsert was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Title string
		Patch domain.ArticlePatch
	}{Ctx: ctx, Title: title, Patch: patch}
	mock.lockUpsert.Lock()
	mock.calls.Upsert = append(mock.calls.Upsert, callInfo)
	mock.lockUpsert.Unlock()
	return mock.UpsertFunc(ctx, title, patch)
}

func (mock *articleWriterMock) UpsertCalls() []struct {
	Ctx   context.Context
	Title string
	Patch domain.ArticlePatch
} {
	mock.lockUpsert.RLock()
	calls := mock.calls.Upsert
	mock.lockUpsert.RUnlock()
	return calls
}

func (mock *articleWriterMock) Update(ctx context.Context, title string, patch domain.ArticlePatch) error {
	if mock.UpdateFunc == nil {
		panic("articleWriterMock.UpdateFunc: method is nil but articleWriter.Update was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Title string
		Patch domain.ArticlePatch
	}{Ctx: ctx, Title: title, Patch: patch}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, title, patch)
}

func (mock *articleWriterMock) UpdateCalls() []struct {
	Ctx   context.Context
	Title string
	Patch domain.ArticlePatch
} {
	mock.lockUpdate.RLock()
	calls := mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}
