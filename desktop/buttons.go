package desktop

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownButton is returned for names outside the button vocabulary.
var ErrUnknownButton = errors.New("unknown mouse button")

type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
	ButtonMouse4 Button = "mouse4"
	ButtonMouse5 Button = "mouse5"
)

// ParseButton validates name. An empty name means the left button.
func ParseButton(name string) (Button, error) {
	switch b := Button(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return ButtonLeft, nil
	case ButtonLeft, ButtonRight, ButtonMiddle, ButtonMouse4, ButtonMouse5:
		return b, nil
	}
	return "", fmt.Errorf("%w: '%s' (expected left, right, middle, mouse4 or mouse5)", ErrUnknownButton, name)
}

// Extended reports whether the button is an X button, which the injector
// sends through the native input API.
func (b Button) Extended() bool {
	return b == ButtonMouse4 || b == ButtonMouse5
}

// xButton returns 1 for mouse4 and 2 for mouse5.
func (b Button) xButton() int {
	if b == ButtonMouse5 {
		return 2
	}
	return 1
}

func (b Button) robotName() string {
	if b == ButtonMiddle {
		return "center"
	}
	return string(b)
}
