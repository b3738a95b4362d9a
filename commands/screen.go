package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/wintest/gate"
	"github.com/mobile-next/wintest/types"
)

type ScreenSizeRequest struct{}

type ScreenSizeResult struct {
	types.Size
	Message string `json:"message"`
}

// GetScreenSize reports the size of the virtual desktop.
func (e *Executor) GetScreenSize(ctx context.Context, req ScreenSizeRequest) *CommandResponse {
	var size types.Size
	err := e.run(ctx, gate.ToolGetScreenSize, "", func(ctx context.Context, w types.Window) error {
		var err error
		size, err = e.desktop.Capture.ScreenSize()
		return err
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(ScreenSizeResult{
		Size:    size,
		Message: fmt.Sprintf("Screen size: %dx%d", size.Width, size.Height),
	})
}
