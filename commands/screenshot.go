package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
	"github.com/mobile-next/wintest/utils"
)

// ImageOptions control how a capture is encoded and stored.
type ImageOptions struct {
	Filename string
	Format   string
	Quality  int
}

// ScreenshotRequest represents the parameters for a full screen capture
type ScreenshotRequest struct {
	Filename string `json:"filename,omitempty" jsonschema:"base name to save the image under in the output directory, without extension"`
	Format   string `json:"format,omitempty" jsonschema:"png (default) or jpeg"`
	Quality  int    `json:"quality,omitempty" jsonschema:"jpeg quality from 1 to 100"`
}

// ScreenshotRegionRequest represents the parameters for a region capture
type ScreenshotRegionRequest struct {
	X        int    `json:"x" jsonschema:"left edge in absolute screen coordinates"`
	Y        int    `json:"y" jsonschema:"top edge in absolute screen coordinates"`
	Width    int    `json:"width" jsonschema:"width in pixels, greater than zero"`
	Height   int    `json:"height" jsonschema:"height in pixels, greater than zero"`
	Filename string `json:"filename,omitempty" jsonschema:"base name to save the image under in the output directory, without extension"`
	Format   string `json:"format,omitempty" jsonschema:"png (default) or jpeg"`
	Quality  int    `json:"quality,omitempty" jsonschema:"jpeg quality from 1 to 100"`
}

// WindowCaptureRequest represents the parameters for window captures
type WindowCaptureRequest struct {
	ProcessName string   `json:"process_name,omitempty" jsonschema:"case-insensitive fragment of the process name, e.g. notepad"`
	WaitTime    *float64 `json:"wait_time,omitempty" jsonschema:"seconds to wait after activation before capturing (foreground capture only)"`
	Filename    string   `json:"filename,omitempty" jsonschema:"base name to save the image under in the output directory, without extension"`
	Format      string   `json:"format,omitempty" jsonschema:"png (default) or jpeg"`
	Quality     int      `json:"quality,omitempty" jsonschema:"jpeg quality from 1 to 100"`
}

func (r ScreenshotRequest) options() ImageOptions {
	return ImageOptions{Filename: r.Filename, Format: r.Format, Quality: r.Quality}
}

func (r ScreenshotRegionRequest) options() ImageOptions {
	return ImageOptions{Filename: r.Filename, Format: r.Format, Quality: r.Quality}
}

func (r WindowCaptureRequest) options() ImageOptions {
	return ImageOptions{Filename: r.Filename, Format: r.Format, Quality: r.Quality}
}

// ScreenshotResponse represents the response for a capture command
type ScreenshotResponse struct {
	Message  string `json:"message"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     string `json:"data,omitempty"`     // base64 encoded image data
	FilePath string `json:"filePath,omitempty"` // path where file was saved
	Window   string `json:"window,omitempty"`

	// Image holds the encoded bytes for transports that send binary content.
	Image []byte `json:"-"`
}

// ScreenshotCapture captures every display.
func (e *Executor) ScreenshotCapture(ctx context.Context, req ScreenshotRequest) *CommandResponse {
	format, err := utils.NormalizeImageFormat(e.format(req.Format))
	if err != nil {
		return NewErrorResponse(invalidParams("%v", err))
	}

	var img image.Image
	err = e.run(ctx, gate.ToolScreenshotCapture, "", func(ctx context.Context, w types.Window) error {
		var err error
		img, err = e.desktop.Capture.Screen()
		return err
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return e.imageResponse(img, format, req.options(), "Captured screen", types.Window{})
}

// ScreenshotRegion captures a rectangle of the screen.
func (e *Executor) ScreenshotRegion(ctx context.Context, req ScreenshotRegionRequest) *CommandResponse {
	if req.Width <= 0 || req.Height <= 0 {
		return NewErrorResponse(invalidParams("width and height must be positive, got %dx%d", req.Width, req.Height))
	}

	region := types.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if err := e.checkRegion(region); err != nil {
		return NewErrorResponse(err)
	}

	format, err := utils.NormalizeImageFormat(e.format(req.Format))
	if err != nil {
		return NewErrorResponse(invalidParams("%v", err))
	}

	var img image.Image
	err = e.run(ctx, gate.ToolScreenshotRegion, "", func(ctx context.Context, w types.Window) error {
		var err error
		img, err = e.desktop.Capture.Region(region)
		return err
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	msg := fmt.Sprintf("Captured region %dx%d at (%d,%d)", req.Width, req.Height, req.X, req.Y)
	return e.imageResponse(img, format, req.options(), msg, types.Window{})
}

// WindowCaptureBackground captures a window without activating it.
func (e *Executor) WindowCaptureBackground(ctx context.Context, req WindowCaptureRequest) *CommandResponse {
	target, err := e.requireTarget(req.ProcessName)
	if err != nil {
		return NewErrorResponse(err)
	}

	format, err := utils.NormalizeImageFormat(e.format(req.Format))
	if err != nil {
		return NewErrorResponse(invalidParams("%v", err))
	}

	var img image.Image
	var window types.Window
	err = e.run(ctx, gate.ToolWindowCaptureBackground, target, func(ctx context.Context, _ types.Window) error {
		w, err := e.resolve(ctx, target)
		if err != nil {
			return err
		}
		window = w
		img, err = e.desktop.Capture.Window(w)
		return err
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return e.imageResponse(img, format, req.options(), fmt.Sprintf("Captured %s in the background", window), window)
}

// WindowCaptureForeground activates the window and captures its area of
// the screen.
func (e *Executor) WindowCaptureForeground(ctx context.Context, req WindowCaptureRequest) *CommandResponse {
	target, err := e.requireTarget(req.ProcessName)
	if err != nil {
		return NewErrorResponse(err)
	}

	format, err := utils.NormalizeImageFormat(e.format(req.Format))
	if err != nil {
		return NewErrorResponse(invalidParams("%v", err))
	}

	wait, err := e.optionalDelay("wait_time", req.WaitTime, e.gate.SettleDelay())
	if err != nil {
		return NewErrorResponse(err)
	}

	var img image.Image
	var window types.Window
	err = e.run(ctx, gate.ToolWindowCaptureForeground, target, func(ctx context.Context, _ types.Window) error {
		w, err := e.focus(ctx, target, wait)
		if err != nil {
			return err
		}
		window = w

		rect, err := e.desktop.Capture.WindowRect(w)
		if err != nil {
			return fmt.Errorf("%w: %w", gate.ErrCaptureFailed, err)
		}
		img, err = e.desktop.Capture.Region(rect)
		return err
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return e.imageResponse(img, format, req.options(), fmt.Sprintf("Captured %s in the foreground", window), window)
}

func (e *Executor) format(requested string) string {
	if requested != "" {
		return requested
	}
	return e.cfg.Capture.Format
}

func (e *Executor) imageResponse(img image.Image, format string, opts ImageOptions, msg string, w types.Window) *CommandResponse {
	quality := opts.Quality
	if quality == 0 {
		quality = e.cfg.Capture.JpegQuality
	}

	data, err := utils.EncodeImage(img, format, quality)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("%w: error encoding %s: %w", gate.ErrCaptureFailed, format, err))
	}

	bounds := img.Bounds()
	resp := ScreenshotResponse{
		Message:  msg,
		Format:   format,
		MimeType: utils.MimeType(format),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Data:     base64.StdEncoding.EncodeToString(data),
		Image:    data,
	}
	if w.PID != 0 {
		resp.Window = w.String()
	}

	if opts.Filename != "" {
		path, err := utils.SaveImageFile(e.cfg.Capture.OutputDir, opts.Filename, utils.FileExtension(format), data)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("%w: %w", gate.ErrCaptureFailed, err))
		}
		resp.FilePath = path
		resp.Message = fmt.Sprintf("%s, saved to %s", msg, path)
	}

	return NewSuccessResponse(resp)
}
