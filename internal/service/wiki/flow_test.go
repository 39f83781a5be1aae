package wiki_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binia1/hyobinwiki/internal/adapter/memstore"
	"github.com/binia1/hyobinwiki/internal/domain"
	"github.com/binia1/hyobinwiki/internal/service/wiki"
	"github.com/binia1/hyobinwiki/pkg/ctxutil"
)

type harness struct {
	store  *memstore.Store
	cache  *wiki.Cache
	syncer *wiki.Syncer
	svc    *wiki.Service
}

func startHarness(t *testing.T) *harness {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	cache := wiki.NewCache()
	seeder := wiki.NewSeeder(log, store, wiki.DefaultImageMap(), "효빈광역시", wiki.SeedMarker)
	syncer := wiki.NewSyncer(log, store, cache, seeder, 5*time.Second)
	svc := wiki.NewService(log, store, cache, wiki.Config{AuthenticatedLabel: "효빈"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = syncer.Run(ctx, domain.Identity{Subject: uuid.New(), IsAnonymous: true})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-syncer.Loaded():
	case <-time.After(5 * time.Second):
		t.Fatal("initial load did not complete")
	}
	return &harness{store: store, cache: cache, syncer: syncer, svc: svc}
}

func (h *harness) waitForRev(t *testing.T, title string, rev int) {
	t.Helper()
	require.Eventually(t, func() bool {
		a, ok := h.cache.Get(title)
		return ok && len(a.History) > 0 && a.History[0].Rev == rev
	}, 2*time.Second, 5*time.Millisecond)
}

func TestFlow_EmptyStoreIsSeeded(t *testing.T) {
	t.Parallel()

	h := startHarness(t)

	a, ok := h.cache.Get("효빈광역시")
	require.True(t, ok)
	assert.Contains(t, a.Content, wiki.SeedMarker)
	require.Len(t, a.History, 1)
	assert.Equal(t, 53, a.History[0].Rev)
	assert.Equal(t, wiki.Status{}, h.syncer.Status())
}

func TestFlow_SequentialSavesProduceContiguousRevisions(t *testing.T) {
	t.Parallel()

	h := startHarness(t)
	ctx := ctxutil.WithIdentity(context.Background(), domain.Identity{Subject: uuid.New(), IsAnonymous: true})

	for i := 1; i <= 3; i++ {
		_, err := h.svc.SaveArticle(ctx, wiki.SaveInput{Title: "남구", Content: "본문"})
		require.NoError(t, err)
		h.waitForRev(t, "남구", i)
	}

	hist, err := h.svc.History("남구")
	require.NoError(t, err)
	revs := make([]int, len(hist))
	for i, r := range hist {
		revs[i] = r.Rev
		assert.Equal(t, domain.AnonymousLabel, r.User)
	}
	assert.Equal(t, []int{3, 2, 1}, revs)
}

func TestFlow_DiscussionLeavesContentAlone(t *testing.T) {
	t.Parallel()

	h := startHarness(t)
	ctx := ctxutil.WithIdentity(context.Background(), domain.Identity{Subject: uuid.New()})

	_, err := h.svc.SaveArticle(ctx, wiki.SaveInput{Title: "북구", Content: "시청 소재지"})
	require.NoError(t, err)
	h.waitForRev(t, "북구", 1)
	before, _ := h.cache.Get("북구")

	_, err = h.svc.PostDiscussion(ctx, wiki.PostInput{Title: "북구", Topic: "질문", Message: "내용"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		a, _ := h.cache.Get("북구")
		return len(a.Discuss) == 1
	}, 2*time.Second, 5*time.Millisecond)

	after, _ := h.cache.Get("북구")
	assert.Equal(t, before.Content, after.Content)
	assert.Equal(t, before.History, after.History)
	assert.Equal(t, before.LastUpdated, after.LastUpdated)
	assert.Equal(t, "효빈", after.Discuss[0].User)
}
