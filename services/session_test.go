package services

import (
	"context"
	"ferreteria_server/catalog"
	"ferreteria_server/structs"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSearchesRemoteUntilCacheReady(t *testing.T) {
	f := newSessionFixture(t, testProduct("4521", "Martillo"), testProduct("7788", "Broca"))
	f.gateway.listAllGate = make(chan struct{})

	s := f.service.Start(SessionUser{ID: uuid.New()})
	assert.Equal(t, CacheLoading, s.Status().State)

	res, err := s.Search(context.Background(), catalog.Query{Text: "martillo"}, ModeSubmit)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "4521", res.Products[0].Code)

	close(f.gateway.listAllGate)
	s.tasks.Wait()

	status := s.Status()
	assert.Equal(t, CacheReady, status.State)
	assert.Equal(t, catalog.ProgressReady, status.Progress)
	assert.Equal(t, 2, status.Size)

	calls := f.gateway.planCount()
	res, err = s.Search(context.Background(), catalog.Query{Text: "broca"}, ModeInput)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "7788", res.Products[0].Code)
	assert.Equal(t, calls, f.gateway.planCount(), "cache searches never reach the database")
}

func TestSessionCacheReadyRerunsLatestQuery(t *testing.T) {
	f := newSessionFixture(t, testProduct("1001", "Clavo rojo"), testProduct("1002", "Clavo azul"))
	f.gateway.listAllGate = make(chan struct{})

	s := f.service.Start(SessionUser{ID: uuid.New()})
	events, detach := s.Subscribe(32)
	defer detach()

	_, err := s.Search(context.Background(), catalog.Query{Text: "rojo"}, ModeSubmit)
	require.NoError(t, err)

	close(f.gateway.listAllGate)
	s.tasks.Wait()

	var rerun *SearchResult
	for _, r := range searchEvents(collect(t, events, 50*time.Millisecond)) {
		if r.Source == SourceCache {
			rerun = &r
		}
	}
	require.NotNil(t, rerun, "expected the latest query to be re-run against the cache")
	assert.Equal(t, "rojo", rerun.Query.Text)
	require.Len(t, rerun.Products, 1)
	assert.Equal(t, "1001", rerun.Products[0].Code)
}

func TestSessionCacheReadyRerunKeepsExactScan(t *testing.T) {
	f := newSessionFixture(t, testProduct("4521", "Martillo"), testProduct("45210", "Tenaza"))
	f.gateway.listAllGate = make(chan struct{})

	s := f.service.Start(SessionUser{ID: uuid.New()})
	events, detach := s.Subscribe(32)
	defer detach()

	_, err := s.Search(context.Background(), catalog.Query{Text: "4521", Exact: true}, ModeScan)
	require.NoError(t, err)

	close(f.gateway.listAllGate)
	s.tasks.Wait()

	var rerun *SearchResult
	for _, r := range searchEvents(collect(t, events, 50*time.Millisecond)) {
		if r.Source == SourceCache {
			rerun = &r
		}
	}
	require.NotNil(t, rerun)
	assert.True(t, rerun.Query.Exact)
	require.Len(t, rerun.Products, 1)
	assert.Equal(t, "4521", rerun.Products[0].Code)
}

func TestSessionCacheReadyLeavesEmptyQueryAlone(t *testing.T) {
	f := newSessionFixture(t, testProduct("1001", "Clavo"))
	f.gateway.listAllGate = make(chan struct{})

	s := f.service.Start(SessionUser{ID: uuid.New()})
	events, detach := s.Subscribe(32)
	defer detach()

	close(f.gateway.listAllGate)
	s.tasks.Wait()

	got := collect(t, events, 50*time.Millisecond)
	for _, r := range searchEvents(got) {
		assert.NotEqual(t, SourceCache, r.Source)
	}

	var states []CacheState
	for _, e := range got {
		if st, ok := e.Data.(CatalogStatus); ok && e.Topic == TopicCatalogState {
			states = append(states, st.State)
		}
	}
	assert.Equal(t, []CacheState{CacheReady}, states)
}

func TestSessionRefreshDiscardedWhenOvertaken(t *testing.T) {
	f := newSessionFixture(t, testProduct("1001", "Clavo"))
	s := f.startReady(t)
	// force the remote path
	s.snapshot.Store(nil)

	events, detach := s.Subscribe(8)
	defer detach()

	s.recordQuery(catalog.Query{Text: "clavo"})
	f.gateway.mu.Lock()
	f.gateway.listHook = func() { s.recordQuery(catalog.Query{Text: "tornillo"}) }
	f.gateway.mu.Unlock()

	s.refresh(context.Background(), false, "test")

	assert.Empty(t, searchEvents(collect(t, events, 20*time.Millisecond)))
}

func TestSessionCacheFailureFallsBackToRemote(t *testing.T) {
	f := newSessionFixture(t, testProduct("1001", "Clavo"))
	f.gateway.listAllErr = errBoom

	s := f.startReady(t)
	assert.Equal(t, CacheFailed, s.Status().State)

	res, err := s.Search(context.Background(), catalog.Query{Text: "1001", Exact: true}, ModeScan)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, res.Source)
	require.Len(t, res.Products, 1)
}

func TestSessionRemoteInputIsDebounced(t *testing.T) {
	f := newSessionFixture(t, testProduct("1001", "Clavo"))
	f.gateway.listAllErr = errBoom
	s := f.startReady(t)

	first := make(chan SearchResult, 1)
	go func() {
		res, _ := s.Search(context.Background(), catalog.Query{Text: "cla"}, ModeInput)
		first <- res
	}()
	waitForPending(t, s.debounce)

	second, err := s.Search(context.Background(), catalog.Query{Text: "clavo"}, ModeInput)
	require.NoError(t, err)

	superseded := <-first
	assert.True(t, superseded.Superseded)
	assert.Empty(t, superseded.Products)

	assert.False(t, second.Superseded)
	assert.False(t, second.Stale)
	require.Len(t, second.Products, 1)
	assert.Greater(t, second.Seq, superseded.Seq)
}

func TestSessionSuppliersLoadFailureYieldsEmptyList(t *testing.T) {
	f := newSessionFixture(t)
	f.suppliers.err = errBoom

	s := f.startReady(t)
	assert.NotNil(t, s.Suppliers())
	assert.Empty(t, s.Suppliers())
}

func TestSessionServiceResume(t *testing.T) {
	f := newSessionFixture(t)
	user := SessionUser{ID: uuid.New(), Email: "clerk@ferreteria.test", Role: "clerk"}
	s := f.service.Start(user)
	s.tasks.Wait()

	got, err := f.service.Resume(&structs.AuthClaims{Sub: user.ID, Sid: s.ID})
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = f.service.Resume(&structs.AuthClaims{Sub: uuid.New(), Sid: s.ID})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// a valid token whose session is gone gets a fresh one under the same id
	require.True(t, f.service.End(s.ID))
	recreated, err := f.service.Resume(&structs.AuthClaims{Sub: user.ID, Sid: s.ID, Email: user.Email})
	require.NoError(t, err)
	recreated.tasks.Wait()
	assert.NotSame(t, s, recreated)
	assert.Equal(t, s.ID, recreated.ID)
	assert.Equal(t, 1, f.service.Count())

	_, err = f.service.Resume(&structs.AuthClaims{Sub: user.ID})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionServiceConcurrentResumeSharesOneSession(t *testing.T) {
	f := newSessionFixture(t, testProduct("4521", "Martillo"))
	claims := &structs.AuthClaims{Sub: uuid.New(), Sid: uuid.New(), Email: "clerk@ferreteria.test"}

	const requests = 8
	got := make([]*Session, requests)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			s, err := f.service.Resume(claims)
			assert.NoError(t, err)
			got[i] = s
		}()
	}
	close(start)
	wg.Wait()

	require.NotNil(t, got[0])
	got[0].tasks.Wait()
	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.NoError(t, got[0].ctx.Err())
	assert.Equal(t, 1, f.service.Count())

	f.gateway.mu.Lock()
	defer f.gateway.mu.Unlock()
	assert.Equal(t, 1, f.gateway.listAllCalls)
}

func TestSessionServiceEndClosesListeners(t *testing.T) {
	f := newSessionFixture(t)
	s := f.startReady(t)
	events, _ := s.Subscribe(1)

	assert.True(t, f.service.End(s.ID))
	assert.False(t, f.service.End(s.ID))

	_, open := <-events
	assert.False(t, open)
	assert.Error(t, s.ctx.Err())
}

func TestSessionServiceSweepEndsIdleSessions(t *testing.T) {
	f := newSessionFixture(t)
	idle := f.startReady(t)
	active := f.startReady(t)

	idle.lastSeen.Store(fixedNow.Add(-2 * time.Hour).UnixNano())
	active.lastSeen.Store(fixedNow.Add(-time.Minute).UnixNano())

	assert.Equal(t, 1, f.service.Sweep())
	_, ok := f.service.Get(idle.ID)
	assert.False(t, ok)
	_, ok = f.service.Get(active.ID)
	assert.True(t, ok)
}

func TestSessionServiceSweeperRejectsBadSchedule(t *testing.T) {
	f := newSessionFixture(t)
	f.service.cfg.Session.SweepSchedule = "not a schedule"
	assert.Error(t, f.service.StartSweeper())
}
