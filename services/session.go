package services

import (
	"context"
	"errors"
	"ferreteria_server/catalog"
	"ferreteria_server/structs"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// CacheState is the lifecycle of the session catalog
type CacheState string

const (
	CacheLoading CacheState = "loading"
	CacheReady   CacheState = "ready"
	CacheFailed  CacheState = "failed"
)

// CatalogStatus is reported to the client and pushed on catalog.state
type CatalogStatus struct {
	State    CacheState `json:"state"`
	Progress int        `json:"progress"`
	Size     int        `json:"size"`
}

// SessionUser identifies the clerk owning a session
type SessionUser struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// sessionDeps are the collaborators shared by every session
type sessionDeps struct {
	logger    *gecho.Logger
	cfg       *structs.Config
	gateway   ProductGateway
	suppliers SupplierSource
	store     PhotoStore
	now       func() time.Time
}

// Session is the server-side state of one signed-in clerk: the catalog
// snapshot, the latest query, the edit workflow and the camera.
type Session struct {
	ID        uuid.UUID
	User      SessionUser
	CreatedAt time.Time

	Edit   *EditCoordinator
	Camera *Camera

	logger       *gecho.Logger
	gateway      ProductGateway
	supplierSrc  SupplierSource
	collation    string
	buildTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup

	snapshot atomic.Pointer[catalog.Snapshot]
	debounce *debouncer
	events   *eventHub
	lastSeen atomic.Int64

	mu        sync.Mutex
	state     CacheState
	progress  int
	latest    catalog.Query
	seq       uint64
	suppliers []catalog.Supplier
}

func newSession(id uuid.UUID, user SessionUser, deps sessionDeps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	now := deps.now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		ID:           id,
		User:         user,
		CreatedAt:    now(),
		logger:       deps.logger,
		gateway:      deps.gateway,
		supplierSrc:  deps.suppliers,
		collation:    deps.cfg.Catalog.Collation,
		buildTimeout: deps.cfg.Catalog.BuildTimeout,
		ctx:          ctx,
		cancel:       cancel,
		debounce:     newDebouncer(deps.cfg.Catalog.SearchDebounce),
		events:       newEventHub(),
		state:        CacheLoading,
	}
	s.lastSeen.Store(now().UnixNano())

	s.Camera = NewCamera(deps.logger, deps.cfg.Capture)
	s.Edit = NewEditCoordinator(deps.logger, deps.gateway, deps.store, s, deps.cfg.Session.SaveTimeout)
	s.Edit.now = now
	s.Edit.onChange = func(view EditView) {
		s.events.publish(TopicEditState, view)
	}

	return s
}

// start launches the supplier load, the initial listing and the catalog
// build concurrently.
func (s *Session) start() {
	s.tasks.Add(3)
	go func() {
		defer s.tasks.Done()
		s.loadSuppliers()
	}()
	go func() {
		defer s.tasks.Done()
		s.refresh(s.ctx, false, "initial listing")
	}()
	go func() {
		defer s.tasks.Done()
		s.buildCatalog()
	}()
}

func (s *Session) loadSuppliers() {
	suppliers, err := s.supplierSrc.ListSuppliers(s.ctx)
	if err != nil {
		s.logger.Warn("Failed to load suppliers for session", gecho.Field("session_id", s.ID), gecho.Field("error", err))
		suppliers = []catalog.Supplier{}
	}

	s.mu.Lock()
	s.suppliers = suppliers
	s.mu.Unlock()
}

func (s *Session) buildCatalog() {
	ctx, cancel := context.WithTimeout(s.ctx, s.buildTimeout)
	defer cancel()

	start := time.Now()
	snap, err := catalog.NewBuilder(s.logger, s.gateway, s.collation, s.setProgress).Build(ctx)
	if err != nil {
		CatalogBuildDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		s.logger.Error("Catalog cache unavailable, searches will query the database",
			gecho.Field("session_id", s.ID),
			gecho.Field("error", err),
		)
		s.setState(CacheFailed)
		return
	}

	CatalogBuildDuration.WithLabelValues("ready").Observe(time.Since(start).Seconds())
	CatalogSize.Set(float64(snap.Len()))

	s.snapshot.Store(snap)
	s.setState(CacheReady)
	s.logger.Info("Catalog cache ready",
		gecho.Field("session_id", s.ID),
		gecho.Field("products", snap.Len()),
		gecho.Field("duration", time.Since(start)),
	)

	s.refresh(s.ctx, true, "cache ready")
}

func (s *Session) setProgress(percent int) {
	s.mu.Lock()
	s.progress = percent
	s.mu.Unlock()
	s.events.publish(TopicCatalogProgress, percent)
}

func (s *Session) setState(state CacheState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.events.publish(TopicCatalogState, s.Status())
}

// Status reports the catalog cache state
func (s *Session) Status() CatalogStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CatalogStatus{
		State:    s.state,
		Progress: s.progress,
		Size:     s.snapshot.Load().Len(),
	}
}

// Suppliers returns the supplier list loaded at session start
func (s *Session) Suppliers() []catalog.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Supplier(nil), s.suppliers...)
}

// Search records q as the latest query and answers it from the cache when
// available, otherwise from the database.
func (s *Session) Search(ctx context.Context, q catalog.Query, mode SearchMode) (SearchResult, error) {
	s.Touch()
	seq := s.recordQuery(q)

	strategy := selectStrategy(s.snapshot.Load(), s.gateway, s.debounce)
	result := SearchResult{Query: q, Seq: seq, Source: strategy.source()}

	products, err := strategy.search(ctx, catalog.Classify(q), mode)
	if errors.Is(err, ErrSuperseded) {
		result.Superseded = true
		return result, nil
	}
	if err != nil {
		return result, err
	}

	SearchesTotal.WithLabelValues(string(result.Source)).Inc()
	result.Products = products
	result.Stale = !s.isLatest(seq)
	return result, nil
}

// refresh re-runs the latest query and pushes the results unless a newer
// query was issued meanwhile. With requireText an empty latest query is left alone.
func (s *Session) refresh(ctx context.Context, requireText bool, reason string) {
	q, seq := s.latestQuery()
	if requireText && strings.TrimSpace(q.Text) == "" {
		return
	}

	strategy := selectStrategy(s.snapshot.Load(), s.gateway, s.debounce)
	products, err := strategy.search(ctx, catalog.Classify(q), ModeRefresh)
	if err != nil {
		s.logger.Warn("Failed to refresh search results",
			gecho.Field("session_id", s.ID),
			gecho.Field("reason", reason),
			gecho.Field("error", err),
		)
		return
	}

	if !s.isLatest(seq) {
		s.logger.Debug("Discarding refresh overtaken by a newer query",
			gecho.Field("session_id", s.ID),
			gecho.Field("reason", reason),
		)
		return
	}

	s.events.publish(TopicSearchResults, SearchResult{
		Query:    q,
		Seq:      seq,
		Source:   strategy.source(),
		Products: products,
	})
}

func (s *Session) recordQuery(q catalog.Query) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.latest = q
	return s.seq
}

func (s *Session) latestQuery() (catalog.Query, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.seq
}

func (s *Session) isLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == seq
}

// Reconcile swaps in a snapshot reflecting a persisted edit
func (s *Session) Reconcile(id uuid.UUID, upd catalog.ProductUpdate) {
	suppliers := s.Suppliers()
	for {
		old := s.snapshot.Load()
		if old == nil {
			return
		}
		next := catalog.Reconcile(old, id, upd, suppliers)
		if next == old || s.snapshot.CompareAndSwap(old, next) {
			return
		}
	}
}

// RefreshResults recomputes the visible results after an edit
func (s *Session) RefreshResults(ctx context.Context) {
	s.refresh(ctx, false, "edit saved")
}

// Subscribe attaches an event listener
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	return s.events.subscribe(buffer)
}

// Touch marks the session as used now
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// close aborts background work and detaches listeners
func (s *Session) close() {
	s.cancel()
	s.debounce.Cancel()
	s.events.close()
}
