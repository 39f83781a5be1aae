package wiki

import (
	"context"
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

var _ articleSaver = &articleSaverMock{}

type articleSaverMock struct {
	SaveArticleFunc func(ctx context.Context, input SaveInput) (domain.Article, error)

	calls struct {
		SaveArticle []struct {
			Ctx   context.Context
			Input SaveInput
		}
	}
	lockSaveArticle sync.RWMutex
}

func (mock *articleSaverMock) SaveArticle(ctx context.Context, input SaveInput) (domain.Article, error) {
	if mock.SaveArticleFunc == nil {
		panic("articleSaverMock.SaveArticleFunc: method is nil but articleSaver.SaveArticle was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input SaveInput
	}{Ctx: ctx, Input: input}
	mock.lockSaveArticle.Lock()
	mock.calls.SaveArticle = append(mock.calls.SaveArticle, callInfo)
	mock.lockSaveArticle.Unlock()
	return mock.SaveArticleFunc(ctx, input)
}

func (mock *articleSaverMock) SaveArticleCalls() []struct {
	Ctx   context.Context
	Input SaveInput
} {
	mock.lockSaveArticle.RLock()
	calls := mock.calls.SaveArticle
	mock.lockSaveArticle.RUnlock()
	return calls
}
