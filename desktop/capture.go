package desktop

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
)

// ScreenCapturer captures displays with kbinani/screenshot and single
// windows with the native API.
type ScreenCapturer struct{}

func NewScreenCapturer() *ScreenCapturer {
	return &ScreenCapturer{}
}

// virtualBounds is the union of all display rectangles.
func virtualBounds(n int, bounds func(int) image.Rectangle) image.Rectangle {
	var union image.Rectangle
	for i := 0; i < n; i++ {
		union = union.Union(bounds(i))
	}
	return union
}

func (c *ScreenCapturer) bounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: no active displays", gate.ErrCaptureFailed)
	}
	return virtualBounds(n, screenshot.GetDisplayBounds), nil
}

// Screen captures every display as one image.
func (c *ScreenCapturer) Screen() (image.Image, error) {
	b, err := c.bounds()
	if err != nil {
		return nil, err
	}

	img, err := screenshot.CaptureRect(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gate.ErrCaptureFailed, err)
	}
	return img, nil
}

func (c *ScreenCapturer) ScreenSize() (types.Size, error) {
	b, err := c.bounds()
	if err != nil {
		return types.Size{}, err
	}
	return types.Size{Width: b.Dx(), Height: b.Dy()}, nil
}

func (c *ScreenCapturer) ScreenBounds() (types.Rect, error) {
	b, err := c.bounds()
	if err != nil {
		return types.Rect{}, err
	}
	return types.Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, nil
}

func (c *ScreenCapturer) Region(r types.Rect) (image.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty region %dx%d", gate.ErrCaptureFailed, r.Width, r.Height)
	}

	img, err := screenshot.CaptureRect(image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height))
	if err != nil {
		return nil, fmt.Errorf("%w: region %+v: %w", gate.ErrCaptureFailed, r, err)
	}
	return img, nil
}

// Window captures w without bringing it to the foreground.
func (c *ScreenCapturer) Window(w types.Window) (image.Image, error) {
	if w.Handle == 0 {
		return nil, fmt.Errorf("%w: %s has no native window handle: %w", gate.ErrCaptureFailed, w, ErrUnsupported)
	}

	img, err := captureWindow(w.Handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gate.ErrCaptureFailed, w, err)
	}
	return img, nil
}

func (c *ScreenCapturer) WindowRect(w types.Window) (types.Rect, error) {
	x, y, width, height := robotgo.GetBounds(w.PID)
	r := types.Rect{X: x, Y: y, Width: width, Height: height}
	if r.Empty() {
		return types.Rect{}, fmt.Errorf("%w: %s has no visible bounds", gate.ErrWindowNotFound, w)
	}
	return r, nil
}
