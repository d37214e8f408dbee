package services

import (
	"context"
	"errors"
	"ferreteria_server/catalog"
	"ferreteria_server/lib"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu       sync.Mutex
	products []catalog.Product

	listAllErr  error
	listAllGate chan struct{}
	listHook    func()
	getErr      error
	updateErr   error

	plans   []catalog.Plan
	updates []catalog.ProductUpdate

	listAllCalls int
}

func (g *fakeGateway) ListProducts(_ context.Context, plan catalog.Plan, limit int) ([]catalog.Product, error) {
	g.mu.Lock()
	g.plans = append(g.plans, plan)
	hook := g.listHook
	snap := catalog.NewSnapshot(g.products, "es")
	g.mu.Unlock()

	if hook != nil {
		hook()
	}
	out := catalog.SearchPlan(snap, plan)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *fakeGateway) ListAllProducts(ctx context.Context) ([]catalog.Product, error) {
	g.mu.Lock()
	g.listAllCalls++
	g.mu.Unlock()
	if g.listAllGate != nil {
		select {
		case <-g.listAllGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.listAllErr != nil {
		return nil, g.listAllErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]catalog.Product(nil), g.products...), nil
}

func (g *fakeGateway) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, lib.ErrNotFound
}

func (g *fakeGateway) UpdateProduct(_ context.Context, id uuid.UUID, upd catalog.ProductUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateErr != nil {
		return g.updateErr
	}
	g.updates = append(g.updates, upd)
	for i := range g.products {
		if g.products[i].ID == id {
			g.products[i].Name = upd.Name
			g.products[i].Stock = upd.Stock
			g.products[i].Zone = upd.Zone
			g.products[i].SupplierID = upd.SupplierID
			g.products[i].Photos = upd.Photos
			g.products[i].UpdatedAt = upd.UpdatedAt
			return nil
		}
	}
	return lib.ErrNotFound
}

func (g *fakeGateway) planCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.plans)
}

type fakeSuppliers struct {
	list []catalog.Supplier
	err  error
}

func (f *fakeSuppliers) ListSuppliers(context.Context) ([]catalog.Supplier, error) {
	return f.list, f.err
}

type storedUpload struct {
	name      string
	overwrite bool
}

type fakeStore struct {
	mu       sync.Mutex
	uploads  []storedUpload
	collide  map[string]bool // names that already exist
	failWith error
	gate     chan struct{}
}

func (s *fakeStore) Upload(ctx context.Context, name string, _ []byte, _ string, allowOverwrite bool) (string, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, storedUpload{name: name, overwrite: allowOverwrite})
	if s.failWith != nil {
		return "", s.failWith
	}
	if s.collide[name] && !allowOverwrite {
		return "", ErrObjectExists
	}
	return "ferreteria/" + name, nil
}

func (s *fakeStore) PublicURL(name string) string {
	return "https://cdn.test/ferreteria/" + name
}

func (s *fakeStore) uploaded() []storedUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storedUpload(nil), s.uploads...)
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

type sessionFixture struct {
	gateway   *fakeGateway
	suppliers *fakeSuppliers
	store     *fakeStore
	service   *SessionService
}

func newSessionFixture(t *testing.T, products ...catalog.Product) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		gateway:   &fakeGateway{products: products},
		suppliers: &fakeSuppliers{},
		store:     &fakeStore{collide: map[string]bool{}},
	}
	f.service = NewSessionService(testLogger(), testConfig(), f.gateway, f.suppliers, f.store)
	f.service.deps.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { f.service.Shutdown(context.Background()) })
	return f
}

// startReady starts a session and waits for its background loads
func (f *sessionFixture) startReady(t *testing.T) *Session {
	t.Helper()
	s := f.service.Start(SessionUser{ID: uuid.New(), Email: "clerk@ferreteria.test", Role: "clerk"})
	s.tasks.Wait()
	return s
}

func testProduct(code, name string) catalog.Product {
	return catalog.Product{ID: uuid.New(), Code: code, Name: name}
}

// collect drains events until the channel is quiet
func collect(t *testing.T, ch <-chan Event, quiet time.Duration) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		case <-time.After(quiet):
			return out
		}
	}
}

func searchEvents(events []Event) []SearchResult {
	var out []SearchResult
	for _, e := range events {
		if r, ok := e.Data.(SearchResult); ok && e.Topic == TopicSearchResults {
			out = append(out, r)
		}
	}
	return out
}

func requireState(t *testing.T, ec *EditCoordinator, want EditState) {
	t.Helper()
	require.Equal(t, want, ec.View().State)
}
