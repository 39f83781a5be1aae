package wiki

import (
	"context"
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

var _ articleSeeder = &articleSeederMock{}

type articleSeederMock struct {
	NeedsSeedFunc func(snap domain.Snapshot) bool
	SeedFunc      func(ctx context.Context) error

	calls struct {
		NeedsSeed []struct {
			Snap domain.Snapshot
		}
		Seed []struct {
			Ctx context.Context
		}
	}
	lockNeedsSeed sync.RWMutex
	lockSeed      sync.RWMutex
}

func (mock *articleSeederMock) NeedsSeed(snap domain.Snapshot) bool {
	if mock.NeedsSeedFunc == nil {
		panic("articleSeederMock.NeedsSeedFunc: method is nil but articleSeeder.NeedsSeed was just called")
	}
	callInfo := struct {
		Snap domain.Snapshot
	}{Snap: snap}
	mock.lockNeedsSeed.Lock()
	mock.calls.NeedsSeed = append(mock.calls.NeedsSeed, callInfo)
	mock.lockNeedsSeed.Unlock()
	return mock.NeedsSeedFunc(snap)
}

func (mock *articleSeederMock) NeedsSeedCalls() []struct {
	Snap domain.Snapshot
} {
	mock.lockNeedsSeed.RLock()
	calls := mock.calls.NeedsSeed
	mock.lockNeedsSeed.RUnlock()
	return calls
}

func (mock *articleSeederMock) Seed(ctx context.Context) error {
	if mock.SeedFunc == nil {
		panic("articleSeederMock.SeedFunc: method is nil but articleSeeder.Seed was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockSeed.Lock()
	mock.calls.Seed = append(mock.calls.Seed, callInfo)
	mock.lockSeed.Unlock()
	return mock.SeedFunc(ctx)
}

func (mock *articleSeederMock) SeedCalls() []struct {
	Ctx context.Context
} {
	mock.lockSeed.RLock()
	calls := mock.calls.Seed
	mock.lockSeed.RUnlock()
	return calls
}
