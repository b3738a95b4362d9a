//go:build windows

package desktop

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	gdi32  = windows.NewLazySystemDLL("gdi32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindow                = user32.NewProc("GetWindow")
	procIsIconic                 = user32.NewProc("IsIconic")
	procShowWindow               = user32.NewProc("ShowWindow")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetWindowDC              = user32.NewProc("GetWindowDC")
	procReleaseDC                = user32.NewProc("ReleaseDC")
	procPrintWindow              = user32.NewProc("PrintWindow")
	procSendInput                = user32.NewProc("SendInput")

	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
)

const (
	gwOwner      = 4
	swRestore    = 9
	biRGB        = 0
	dibRGBColors = 0

	// PW_RENDERFULLCONTENT captures DirectComposition content as well
	pwRenderFullContent = 0x00000002

	inputMouse       = 0
	mouseEventXDown  = 0x0080
	mouseEventXUp    = 0x0100
	maxCaptureBytes  = 500 * 1024 * 1024
	bytesPerPixelRGB = 4
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input mirrors INPUT with the mouse member of the union, which is the
// largest member.
type input struct {
	Type uint32
	Mi   mouseInput
}

var (
	// callbacks cannot be released, so one is shared by every enumeration
	enumMu     sync.Mutex
	enumPID    uint32
	enumFound  uintptr
	enumWindow = windows.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
		var owner uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&owner)))
		if owner != enumPID {
			return 1
		}

		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1
		}

		parent, _, _ := procGetWindow.Call(hwnd, gwOwner)
		if parent != 0 {
			return 1
		}

		enumFound = hwnd
		return 0
	})
)

// topLevelWindow returns the first visible, unowned top-level window of pid.
func topLevelWindow(pid int) (uintptr, bool) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumPID = uint32(pid)
	enumFound = 0

	// EnumWindows reports failure when the callback stops early, so the
	// result is judged by enumFound alone
	_, _, _ = procEnumWindows.Call(enumWindow, 0)
	return enumFound, enumFound != 0
}

// restoreWindow un-minimises hwnd; a minimised window cannot take focus.
func restoreWindow(hwnd uintptr) {
	iconic, _, _ := procIsIconic.Call(hwnd)
	if iconic != 0 {
		procShowWindow.Call(hwnd, swRestore)
	}
}

// captureWindow renders hwnd into a DIB with PrintWindow, which works for
// covered windows as well.
func captureWindow(hwnd uintptr) (image.Image, error) {
	var r rect
	ok, _, err := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return nil, fmt.Errorf("GetWindowRect failed: %w", err)
	}

	width := r.Right - r.Left
	height := r.Bottom - r.Top
	if width <= 0 || height <= 0 {
		return nil, errors.New("window has no visible area")
	}
	if int64(width)*int64(height)*bytesPerPixelRGB > maxCaptureBytes {
		return nil, fmt.Errorf("window too large to capture: %dx%d", width, height)
	}

	windowDC, _, _ := procGetWindowDC.Call(hwnd)
	if windowDC == 0 {
		return nil, errors.New("GetWindowDC failed")
	}
	defer procReleaseDC.Call(hwnd, windowDC)

	memDC, _, _ := procCreateCompatibleDC.Call(windowDC)
	if memDC == 0 {
		return nil, errors.New("CreateCompatibleDC failed")
	}
	defer procDeleteDC.Call(memDC)

	bmi := bitmapInfoHeader{
		BiSize:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		BiWidth:       width,
		BiHeight:      -height, // top-down
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: biRGB,
	}

	var bits uintptr
	bitmap, _, _ := procCreateDIBSection.Call(memDC, uintptr(unsafe.Pointer(&bmi)), dibRGBColors, uintptr(unsafe.Pointer(&bits)), 0, 0)
	if bitmap == 0 {
		return nil, errors.New("CreateDIBSection failed")
	}
	defer procDeleteObject.Call(bitmap)

	old, _, _ := procSelectObject.Call(memDC, bitmap)
	if old == 0 {
		return nil, errors.New("SelectObject failed")
	}
	defer procSelectObject.Call(memDC, old)

	printed, _, _ := procPrintWindow.Call(hwnd, memDC, pwRenderFullContent)
	if printed == 0 {
		return nil, errors.New("PrintWindow failed")
	}

	total := int(width) * int(height) * bytesPerPixelRGB
	src := unsafe.Slice((*byte)(unsafe.Pointer(bits)), total)
	return bgraToRGBA(src, int(width), int(height)), nil
}

// sendXButton presses or releases X button 1 or 2.
func sendXButton(button int, down bool) error {
	flags := uint32(mouseEventXUp)
	if down {
		flags = mouseEventXDown
	}

	in := input{
		Type: inputMouse,
		Mi: mouseInput{
			MouseData: uint32(button),
			DwFlags:   flags,
		},
	}

	sent, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if sent != 1 {
		return fmt.Errorf("SendInput failed: %w", err)
	}
	return nil
}
