package services

import (
	"context"
	"encoding/json"
	"ferreteria_server/structs"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/guonaihong/gout"
)

// PhotoStore is the object storage holding product photos
type PhotoStore interface {
	Upload(ctx context.Context, name string, payload []byte, contentType string, allowOverwrite bool) (string, error)
	PublicURL(name string) string
}

// StorageService talks to the Supabase Storage REST API
type StorageService struct {
	logger *gecho.Logger
	cfg    *structs.StorageConfig
	client *http.Client
}

func NewStorageService(logger *gecho.Logger, cfg *structs.StorageConfig) *StorageService {
	return &StorageService{
		logger: logger,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type storageError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type uploadResponse struct {
	Key string `json:"Key"`
}

// Upload stores the payload under name in the configured bucket. Without
// allowOverwrite an existing object yields ErrObjectExists.
func (ss *StorageService) Upload(ctx context.Context, name string, payload []byte, contentType string, allowOverwrite bool) (string, error) {
	startTime := time.Now()

	var (
		code int
		raw  string
	)
	err := gout.New(ss.client).
		POST(ss.objectURL("object", name)).
		WithContext(ctx).
		SetHeader(gout.H{
			"Authorization": "Bearer " + ss.cfg.ServiceKey,
			"apikey":        ss.cfg.ServiceKey,
			"Content-Type":  contentType,
			"cache-control": "max-age=" + strconv.Itoa(ss.cfg.CacheControl),
			"x-upsert":      strconv.FormatBool(allowOverwrite),
		}).
		SetBody(payload).
		Code(&code).
		BindBody(&raw).
		Do()
	if err != nil {
		ss.logger.Error("Storage upload request failed", gecho.Field("error", err), gecho.Field("name", name))
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}

	if code < 200 || code >= 300 {
		if isObjectExists(code, raw) {
			return "", ErrObjectExists
		}
		ss.logger.Error("Storage upload rejected",
			gecho.Field("status", code),
			gecho.Field("body", raw),
			gecho.Field("name", name),
		)
		return "", fmt.Errorf("failed to upload %s: storage responded %d", name, code)
	}

	path := ss.cfg.Bucket + "/" + name
	var resp uploadResponse
	if json.Unmarshal([]byte(raw), &resp) == nil && resp.Key != "" {
		path = resp.Key
	}

	ss.logger.Debug("Photo uploaded",
		gecho.Field("path", path),
		gecho.Field("bytes", len(payload)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return path, nil
}

// PublicURL returns the absolute public URL of an object in the bucket
func (ss *StorageService) PublicURL(name string) string {
	return ss.objectURL("object/public", name)
}

func (ss *StorageService) objectURL(kind, name string) string {
	return fmt.Sprintf("%s/storage/v1/%s/%s/%s",
		strings.TrimRight(ss.cfg.URL, "/"), kind, url.PathEscape(ss.cfg.Bucket), url.PathEscape(name))
}

// isObjectExists recognizes the collision reply, which the API sends either as
// a 409 or as a 400 wrapping statusCode "409".
func isObjectExists(code int, body string) bool {
	if code == http.StatusConflict {
		return true
	}
	var se storageError
	if json.Unmarshal([]byte(body), &se) == nil && se.StatusCode == "409" {
		return true
	}
	return strings.Contains(strings.ToLower(body), "already exists")
}
