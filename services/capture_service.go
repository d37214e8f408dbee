package services

import (
	"bytes"
	"context"
	"ferreteria_server/structs"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/MonkyMars/gecho"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"
)

// Resolution is the requested stream size
type Resolution struct {
	Width  int
	Height int
}

// Device opens a camera stream
type Device interface {
	Open(ctx context.Context, facing string, res Resolution) (Stream, error)
}

// Stream yields frames until stopped
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Stop()
}

// Camera grants exclusive use of the session camera and turns one frame into
// a square JPEG snapshot.
type Camera struct {
	logger *gecho.Logger
	cfg    *structs.CaptureConfig
	sem    *semaphore.Weighted
}

func NewCamera(logger *gecho.Logger, cfg *structs.CaptureConfig) *Camera {
	return &Camera{
		logger: logger,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(1),
	}
}

// Capture grabs one frame from the device and returns the encoded snapshot.
// The stream is stopped and the camera released on every path.
func (c *Camera) Capture(ctx context.Context, dev Device, facing string, res Resolution) ([]byte, error) {
	if !c.sem.TryAcquire(1) {
		return nil, ErrCameraBusy
	}
	defer c.sem.Release(1)

	if facing == "" {
		facing = c.cfg.DefaultFacing
	}
	if res.Width <= 0 || res.Height <= 0 {
		res = Resolution{Width: c.cfg.DefaultWidth, Height: c.cfg.DefaultHeight}
	}

	stream, err := dev.Open(ctx, facing, res)
	if err != nil {
		c.logger.Warn("Camera could not be opened", gecho.Field("facing", facing), gecho.Field("error", err))
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	defer stream.Stop()

	frame, err := stream.Frame(ctx)
	if err != nil {
		c.logger.Warn("Camera frame could not be read", gecho.Field("error", err))
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	return c.snapshot(frame)
}

// snapshot center-crops the frame to a square, scales it and encodes it as JPEG
func (c *Camera) snapshot(frame image.Image) ([]byte, error) {
	b := frame.Bounds()
	side := min(b.Dx(), b.Dy())
	if side == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrCameraUnavailable)
	}
	crop := image.Rect(0, 0, side, side).Add(image.Point{
		X: b.Min.X + (b.Dx()-side)/2,
		Y: b.Min.Y + (b.Dy()-side)/2,
	})

	size := c.cfg.SnapshotSize
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), frame, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.cfg.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// defaultMaxFramePixels caps uploads when no limit is configured
const defaultMaxFramePixels = 24_000_000

// UploadDevice wraps a posted frame with the configured pixel cap
func (c *Camera) UploadDevice(payload []byte) Device {
	return NewUploadDevice(payload, c.cfg.MaxFramePixels)
}

// uploadDevice serves the frame posted by the browser as a one-shot stream
type uploadDevice struct {
	payload   []byte
	maxPixels int
}

// NewUploadDevice wraps an image body (JPEG, PNG or WebP) as a Device. Frames
// declaring more than maxPixels are refused before they are decoded.
func NewUploadDevice(payload []byte, maxPixels int) Device {
	if maxPixels <= 0 {
		maxPixels = defaultMaxFramePixels
	}
	return uploadDevice{payload: payload, maxPixels: maxPixels}
}

func (d uploadDevice) Open(_ context.Context, _ string, _ Resolution) (Stream, error) {
	if len(d.payload) == 0 {
		return nil, fmt.Errorf("no image received")
	}
	return &uploadStream{payload: d.payload, maxPixels: d.maxPixels}, nil
}

type uploadStream struct {
	payload   []byte
	maxPixels int
	stopped   bool
}

func (s *uploadStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.stopped {
		return nil, fmt.Errorf("stream stopped")
	}

	// The header is enough to size the canvas; a tiny body can declare a huge one
	cfg, _, err := image.DecodeConfig(bytes.NewReader(s.payload))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(s.maxPixels) {
		return nil, fmt.Errorf("frame of %dx%d exceeds %d pixels", cfg.Width, cfg.Height, s.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(s.payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (s *uploadStream) Stop() {
	s.stopped = true
	s.payload = nil
}
