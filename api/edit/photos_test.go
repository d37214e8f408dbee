package edit

import (
	"bytes"
	"context"
	"encoding/binary"
	"ferreteria_server/api/middleware"
	"ferreteria_server/catalog"
	"ferreteria_server/lib"
	"ferreteria_server/services"
	"ferreteria_server/structs"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowGateway struct {
	product catalog.Product
}

func (g rowGateway) ListProducts(context.Context, catalog.Plan, int) ([]catalog.Product, error) {
	return []catalog.Product{g.product}, nil
}

func (g rowGateway) ListAllProducts(context.Context) ([]catalog.Product, error) {
	return []catalog.Product{g.product}, nil
}

func (g rowGateway) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if id != g.product.ID {
		return nil, lib.ErrNotFound
	}
	p := g.product
	return &p, nil
}

func (g rowGateway) UpdateProduct(context.Context, uuid.UUID, catalog.ProductUpdate) error {
	return nil
}

type noSuppliers struct{}

func (noSuppliers) ListSuppliers(context.Context) ([]catalog.Supplier, error) { return nil, nil }

type nopStore struct{}

func (nopStore) Upload(_ context.Context, name string, _ []byte, _ string, _ bool) (string, error) {
	return name, nil
}

func (nopStore) PublicURL(name string) string { return name }

type editFixture struct {
	router    chi.Router
	session   *services.Session
	productID uuid.UUID
	token     string
}

func newEditFixture(t *testing.T) *editFixture {
	t.Helper()
	logger := gecho.NewDefaultLogger()
	cfg := &structs.Config{
		Server:    &structs.ServerConfig{Environment: "test"},
		Cache:     &structs.CacheConfig{},
		Auth:      &structs.AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour},
		RateLimit: &structs.RateLimitConfig{},
		Catalog:   &structs.CatalogConfig{Collation: "es", SearchDebounce: 10 * time.Millisecond, BuildTimeout: time.Second, QueryTimeout: time.Second},
		Session:   &structs.SessionConfig{IdleTimeout: time.Hour, SaveTimeout: time.Second},
		Capture:   &structs.CaptureConfig{SnapshotSize: 100, JPEGQuality: 80, MaxFramePixels: 1_000_000},
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	product := catalog.Product{ID: uuid.New(), Code: "4521", Name: "Martillo"}
	sm := &services.ServiceManager{
		AuthService:    services.NewAuthService(cfg, logger, nil),
		CacheService:   services.NewCacheService(logger, cfg, client),
		SessionService: services.NewSessionService(logger, cfg, rowGateway{product: product}, noSuppliers{}, nopStore{}),
	}
	t.Cleanup(func() { sm.SessionService.Shutdown(context.Background()) })

	router := chi.NewRouter()
	NewEditRoutesManager(logger, middleware.NewMiddleware(cfg, logger, sm)).RegisterRoutes(router)

	userID := uuid.New()
	session := sm.SessionService.Start(services.SessionUser{ID: userID, Role: "clerk"})
	now := time.Now()
	token, err := lib.SignToken(&structs.AuthClaims{
		Sub: userID, Role: "clerk", Iat: now, Exp: now.Add(time.Hour), Jti: uuid.New(), Sid: session.ID,
	}, "test-secret")
	require.NoError(t, err)

	return &editFixture{router: router, session: session, productID: product.ID, token: token}
}

func (f *editFixture) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.AddCookie(&http.Cookie{Name: lib.AccessCookieName, Value: f.token})
	req.AddCookie(&http.Cookie{Name: lib.CSRFCookieName, Value: "csrf-token"})
	req.Header.Set(lib.CSRFHeaderName, "csrf-token")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// hugeCanvasPNG keeps a 1x1 body but declares a 16000x16000 canvas
func hugeCanvasPNG(t *testing.T) []byte {
	t.Helper()
	payload := encodePNG(t, 1, 1)
	binary.BigEndian.PutUint32(payload[16:20], 16000)
	binary.BigEndian.PutUint32(payload[20:24], 16000)
	binary.BigEndian.PutUint32(payload[29:33], crc32.ChecksumIEEE(payload[12:29]))
	return payload
}

func TestCapturePhotoRequiresOpenEdit(t *testing.T) {
	f := newEditFixture(t)

	// an undecodable body would be a 400 from the camera; the state check comes first
	rec := f.do(t, http.MethodPut, "/edit/photos/1", []byte("not an image"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, services.EditClosed, f.session.Edit.View().State)
}

func TestCapturePhotoIntoSlot(t *testing.T) {
	f := newEditFixture(t)

	rec := f.do(t, http.MethodPost, "/edit/"+f.productID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPut, "/edit/photos/2", encodePNG(t, 64, 48))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.SlotPending, f.session.Edit.View().Slots[1].Kind)

	rec = f.do(t, http.MethodPut, "/edit/photos/1", hugeCanvasPNG(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.SlotEmpty, f.session.Edit.View().Slots[0].Kind)

	rec = f.do(t, http.MethodPut, "/edit/photos/3", encodePNG(t, 8, 8))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
