package services

import (
	"context"
	"errors"
	"ferreteria_server/catalog"
	"fmt"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EditState is the edit workflow state
type EditState string

const (
	EditClosed  EditState = "closed"
	EditLoading EditState = "loading"
	EditEditing EditState = "editing"
	EditSaving  EditState = "saving"
)

// SlotKind describes what a photo slot holds
type SlotKind string

const (
	SlotEmpty    SlotKind = "empty"
	SlotExisting SlotKind = "existing"
	SlotPending  SlotKind = "pending"
)

type photoSlot struct {
	kind        SlotKind
	url         string
	payload     []byte
	contentType string
}

// SlotView is the client view of a photo slot
type SlotView struct {
	Slot  int      `json:"slot"`
	Kind  SlotKind `json:"kind"`
	URL   string   `json:"url,omitempty"`
	Bytes int      `json:"bytes,omitempty"`
}

// EditView is pushed on edit.state and returned by the edit endpoints
type EditView struct {
	State   EditState        `json:"state"`
	Product *catalog.Product `json:"product,omitempty"`
	Slots   []SlotView       `json:"slots"`
	Error   string           `json:"error,omitempty"`
}

// EditFields are the form values submitted by the clerk
type EditFields struct {
	Name       string
	Stock      float64
	Zone       *int
	SupplierID *uuid.UUID
}

// editHost is the session side of a successful save
type editHost interface {
	Suppliers() []catalog.Supplier
	Reconcile(id uuid.UUID, upd catalog.ProductUpdate)
	RefreshResults(ctx context.Context)
}

// EditCoordinator runs the single edit workflow of a session:
// closed → loading → editing → saving → closed.
type EditCoordinator struct {
	logger      *gecho.Logger
	gateway     ProductGateway
	store       PhotoStore
	host        editHost
	saveTimeout time.Duration
	now         func() time.Time
	onChange    func(EditView)

	mu      sync.Mutex
	state   EditState
	gen     uint64
	product *catalog.Product
	slots   [catalog.PhotoSlots]photoSlot
	lastErr string
}

func NewEditCoordinator(logger *gecho.Logger, gateway ProductGateway, store PhotoStore, host editHost, saveTimeout time.Duration) *EditCoordinator {
	return &EditCoordinator{
		logger:      logger,
		gateway:     gateway,
		store:       store,
		host:        host,
		saveTimeout: saveTimeout,
		now:         time.Now,
		state:       EditClosed,
	}
}

// View returns the current workflow state
func (ec *EditCoordinator) View() EditView {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.viewLocked()
}

// Open loads the authoritative row and enters editing
func (ec *EditCoordinator) Open(ctx context.Context, id uuid.UUID) (EditView, error) {
	ec.mu.Lock()
	if ec.state == EditSaving {
		ec.mu.Unlock()
		return ec.View(), ErrEditBusy
	}
	ec.gen++
	gen := ec.gen
	ec.state = EditLoading
	ec.product = nil
	ec.resetSlotsLocked()
	ec.lastErr = ""
	ec.notifyLocked()
	ec.mu.Unlock()

	product, err := ec.gateway.GetProduct(ctx, id)
	if err == nil && product == nil {
		err = errors.New("product not found")
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()

	// Cancelled or reopened while loading
	if ec.gen != gen {
		return ec.viewLocked(), nil
	}

	if err != nil {
		ec.logger.Error("Failed to load product for editing", gecho.Field("id", id), gecho.Field("error", err))
		ec.state = EditClosed
		ec.lastErr = ErrFetchFailed.Error()
		ec.notifyLocked()
		return ec.viewLocked(), fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	ec.state = EditEditing
	ec.product = product
	for i, url := range product.Photos {
		if i >= catalog.PhotoSlots {
			break
		}
		ec.slots[i] = photoSlot{kind: SlotExisting, url: url}
	}
	ec.notifyLocked()
	return ec.viewLocked(), nil
}

// RequireEditing reports whether a photo or submit would currently be accepted
func (ec *EditCoordinator) RequireEditing() error {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.requireEditingLocked()
}

// CapturePhoto places a new image in slot 1 or 2
func (ec *EditCoordinator) CapturePhoto(slot int, payload []byte, contentType string) (EditView, error) {
	return ec.setSlot(slot, photoSlot{kind: SlotPending, payload: payload, contentType: contentType})
}

// ClearPhoto empties slot 1 or 2
func (ec *EditCoordinator) ClearPhoto(slot int) (EditView, error) {
	return ec.setSlot(slot, photoSlot{kind: SlotEmpty})
}

func (ec *EditCoordinator) setSlot(slot int, value photoSlot) (EditView, error) {
	if slot < 1 || slot > catalog.PhotoSlots {
		return ec.View(), ErrInvalidSlot
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()
	if err := ec.requireEditingLocked(); err != nil {
		return ec.viewLocked(), err
	}

	ec.slots[slot-1] = value
	ec.lastErr = ""
	ec.notifyLocked()
	return ec.viewLocked(), nil
}

// Cancel leaves the workflow, discarding pending photos
func (ec *EditCoordinator) Cancel() (EditView, error) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.state == EditSaving {
		return ec.viewLocked(), ErrEditBusy
	}
	ec.gen++
	ec.closeLocked()
	return ec.viewLocked(), nil
}

// Submit validates, uploads pending photos, persists the row and reconciles
// the session cache. Once saving begins it runs to completion even if ctx is
// cancelled.
func (ec *EditCoordinator) Submit(ctx context.Context, fields EditFields) (*catalog.Product, error) {
	ec.mu.Lock()
	if err := ec.requireEditingLocked(); err != nil {
		ec.mu.Unlock()
		return nil, err
	}
	for _, s := range ec.slots {
		if s.kind == SlotEmpty {
			ec.lastErr = ErrPhotosRequired.Error()
			ec.notifyLocked()
			ec.mu.Unlock()
			return nil, ErrPhotosRequired
		}
	}

	ec.state = EditSaving
	ec.lastErr = ""
	original := *ec.product
	slots := ec.slots
	ec.notifyLocked()
	ec.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ec.saveTimeout)
	defer cancel()

	urls, err := ec.uploadPhotos(saveCtx, original.ID, slots)
	if err != nil {
		ec.logger.Error("Failed to upload product photos", gecho.Field("id", original.ID), gecho.Field("error", err))
		return nil, ec.fail(ErrUploadFailed, err)
	}

	upd := catalog.ProductUpdate{
		Name:       fields.Name,
		Stock:      fields.Stock,
		Zone:       fields.Zone,
		SupplierID: fields.SupplierID,
		Photos:     urls,
		UpdatedAt:  ec.now(),
	}
	if err := ec.gateway.UpdateProduct(saveCtx, original.ID, upd); err != nil {
		ec.logger.Error("Failed to persist product changes", gecho.Field("id", original.ID), gecho.Field("error", err))
		return nil, ec.fail(ErrSaveFailed, err)
	}
	EditSavesTotal.WithLabelValues("saved").Inc()

	ec.host.Reconcile(original.ID, upd)

	ec.mu.Lock()
	ec.closeLocked()
	ec.mu.Unlock()

	ec.host.RefreshResults(saveCtx)

	saved := original
	saved.Name = upd.Name
	saved.Stock = upd.Stock
	saved.Zone = upd.Zone
	saved.SupplierID = upd.SupplierID
	saved.SupplierName = catalog.SupplierName(ec.host.Suppliers(), upd.SupplierID)
	saved.Photos = upd.Photos
	saved.UpdatedAt = upd.UpdatedAt

	ec.logger.Info("Product edit saved", gecho.Field("id", original.ID), gecho.Field("code", original.Code))
	return &saved, nil
}

// uploadPhotos uploads every pending slot concurrently and returns the final
// URL list in slot order.
func (ec *EditCoordinator) uploadPhotos(ctx context.Context, id uuid.UUID, slots [catalog.PhotoSlots]photoSlot) ([]string, error) {
	urls := make([]string, len(slots))
	g, gctx := errgroup.WithContext(ctx)

	for i, slot := range slots {
		switch slot.kind {
		case SlotExisting:
			urls[i] = slot.url
		case SlotPending:
			g.Go(func() error {
				url, err := ec.uploadSlot(gctx, id, i+1, slot)
				urls[i] = url
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// uploadSlot stores one photo, retrying a name collision once with overwrite
func (ec *EditCoordinator) uploadSlot(ctx context.Context, id uuid.UUID, slot int, p photoSlot) (string, error) {
	name := fmt.Sprintf("foto_%s_%d_%d%s", id, slot, ec.now().UnixMilli(), photoExtension(p.contentType))

	_, err := ec.store.Upload(ctx, name, p.payload, p.contentType, false)
	if errors.Is(err, ErrObjectExists) {
		ec.logger.Warn("Photo name already taken, overwriting", gecho.Field("name", name))
		_, err = ec.store.Upload(ctx, name, p.payload, p.contentType, true)
	}
	if err != nil {
		return "", err
	}
	return ec.store.PublicURL(name), nil
}

// fail returns to editing with the given clerk-facing error
func (ec *EditCoordinator) fail(sentinel, cause error) error {
	EditSavesTotal.WithLabelValues("failed").Inc()

	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.state = EditEditing
	ec.lastErr = sentinel.Error()
	ec.notifyLocked()
	return fmt.Errorf("%w: %v", sentinel, cause)
}

func (ec *EditCoordinator) requireEditingLocked() error {
	switch ec.state {
	case EditEditing:
		return nil
	case EditSaving:
		return ErrEditBusy
	default:
		return ErrNotEditing
	}
}

func (ec *EditCoordinator) closeLocked() {
	ec.state = EditClosed
	ec.product = nil
	ec.lastErr = ""
	ec.resetSlotsLocked()
	ec.notifyLocked()
}

func (ec *EditCoordinator) resetSlotsLocked() {
	for i := range ec.slots {
		ec.slots[i] = photoSlot{kind: SlotEmpty}
	}
}

func (ec *EditCoordinator) viewLocked() EditView {
	view := EditView{State: ec.state, Error: ec.lastErr}
	if ec.product != nil {
		p := *ec.product
		view.Product = &p
	}
	for i, s := range ec.slots {
		kind := s.kind
		if kind == "" {
			kind = SlotEmpty
		}
		view.Slots = append(view.Slots, SlotView{Slot: i + 1, Kind: kind, URL: s.url, Bytes: len(s.payload)})
	}
	return view
}

func (ec *EditCoordinator) notifyLocked() {
	if ec.onChange != nil {
		ec.onChange(ec.viewLocked())
	}
}

func photoExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
