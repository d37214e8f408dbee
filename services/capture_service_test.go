package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFrame(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeStream struct {
	frame   image.Image
	err     error
	stopped int
	entered chan struct{}
	block   chan struct{}
}

func (s *fakeStream) Frame(ctx context.Context) (image.Image, error) {
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	return s.frame, s.err
}

func (s *fakeStream) Stop() { s.stopped++ }

type fakeDevice struct {
	stream  *fakeStream
	openErr error
	facing  string
	res     Resolution
}

func (d *fakeDevice) Open(_ context.Context, facing string, res Resolution) (Stream, error) {
	d.facing, d.res = facing, res
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.stream, nil
}

func TestCaptureProducesSquareJPEG(t *testing.T) {
	cam := NewCamera(testLogger(), testConfig().Capture)

	out, err := cam.Capture(context.Background(), cam.UploadDevice(pngFrame(t, 320, 180)), "", Resolution{})
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 800, img.Bounds().Dy())

	_, err = jpeg.DecodeConfig(bytes.NewReader(out))
	assert.NoError(t, err)
}

func TestCaptureAppliesDefaultsAndStops(t *testing.T) {
	cam := NewCamera(testLogger(), testConfig().Capture)
	stream := &fakeStream{frame: image.NewRGBA(image.Rect(0, 0, 10, 20))}
	dev := &fakeDevice{stream: stream}

	_, err := cam.Capture(context.Background(), dev, "", Resolution{})
	require.NoError(t, err)
	assert.Equal(t, "environment", dev.facing)
	assert.Equal(t, Resolution{Width: 1280, Height: 720}, dev.res)
	assert.Equal(t, 1, stream.stopped)
}

func TestCaptureReleasesOnFailure(t *testing.T) {
	cam := NewCamera(testLogger(), testConfig().Capture)

	_, err := cam.Capture(context.Background(), &fakeDevice{openErr: errors.New("permission denied")}, "user", Resolution{})
	assert.ErrorIs(t, err, ErrCameraUnavailable)

	stream := &fakeStream{err: errors.New("no frame")}
	_, err = cam.Capture(context.Background(), &fakeDevice{stream: stream}, "user", Resolution{})
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.Equal(t, 1, stream.stopped)

	_, err = cam.Capture(context.Background(), cam.UploadDevice([]byte("not an image")), "", Resolution{})
	assert.ErrorIs(t, err, ErrCameraUnavailable)

	// the camera is free again
	_, err = cam.Capture(context.Background(), cam.UploadDevice(pngFrame(t, 40, 40)), "", Resolution{})
	assert.NoError(t, err)
}

func TestCaptureIsExclusive(t *testing.T) {
	cam := NewCamera(testLogger(), testConfig().Capture)
	stream := &fakeStream{
		frame:   image.NewRGBA(image.Rect(0, 0, 8, 8)),
		entered: make(chan struct{}),
		block:   make(chan struct{}),
	}

	done := make(chan error, 1)
	go func() {
		_, err := cam.Capture(context.Background(), &fakeDevice{stream: stream}, "", Resolution{})
		done <- err
	}()

	select {
	case <-stream.entered:
	case <-time.After(time.Second):
		t.Fatal("first capture never reached the stream")
	}

	_, err := cam.Capture(context.Background(), cam.UploadDevice(pngFrame(t, 8, 8)), "", Resolution{})
	assert.ErrorIs(t, err, ErrCameraBusy)

	close(stream.block)
	assert.NoError(t, <-done)
}

// oversizedPNG is a small valid PNG whose header claims a w x h canvas
func oversizedPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	payload := pngFrame(t, 1, 1)
	// signature (8) + IHDR length (4) + type (4), then width and height
	binary.BigEndian.PutUint32(payload[16:20], w)
	binary.BigEndian.PutUint32(payload[20:24], h)
	binary.BigEndian.PutUint32(payload[29:33], crc32.ChecksumIEEE(payload[12:29]))
	return payload
}

func TestUploadFrameRejectsOversizedCanvas(t *testing.T) {
	cam := NewCamera(testLogger(), testConfig().Capture)

	huge := oversizedPNG(t, 16000, 16000)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(huge))
	require.NoError(t, err)
	require.Equal(t, 16000, cfg.Width)

	_, err = cam.Capture(context.Background(), cam.UploadDevice(huge), "", Resolution{})
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.Contains(t, err.Error(), "exceeds")

	// 1200 x 900 decodes fine but is over the 1 MP test cap
	_, err = cam.Capture(context.Background(), cam.UploadDevice(pngFrame(t, 1200, 900)), "", Resolution{})
	assert.ErrorIs(t, err, ErrCameraUnavailable)

	_, err = cam.Capture(context.Background(), cam.UploadDevice(pngFrame(t, 900, 900)), "", Resolution{})
	assert.NoError(t, err)
}

func TestUploadDeviceDefaultsPixelCap(t *testing.T) {
	dev := NewUploadDevice([]byte{1}, 0).(uploadDevice)
	assert.Equal(t, defaultMaxFramePixels, dev.maxPixels)

	stream, err := NewUploadDevice(oversizedPNG(t, 16000, 16000), 0).Open(context.Background(), "", Resolution{})
	require.NoError(t, err)
	_, err = stream.Frame(context.Background())
	assert.ErrorContains(t, err, "exceeds")
}
