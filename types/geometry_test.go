package types

import "testing"

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"normal", Rect{X: 0, Y: 0, Width: 10, Height: 10}, false},
		{"zero width", Rect{Width: 0, Height: 10}, true},
		{"negative height", Rect{Width: 10, Height: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 800, Height: 600}

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"top left corner", Point{100, 100}, true},
		{"inside", Point{500, 300}, true},
		{"right edge is exclusive", Point{900, 300}, false},
		{"above", Point{500, 99}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestRectContainsRect(t *testing.T) {
	screen := Rect{X: -1920, Y: 0, Width: 3840, Height: 1080}

	tests := []struct {
		name  string
		inner Rect
		want  bool
	}{
		{"whole screen", screen, true},
		{"left display", Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}, true},
		{"starts left of the screen", Rect{X: -1921, Y: 0, Width: 10, Height: 10}, false},
		{"ends past the right edge", Rect{X: 1900, Y: 0, Width: 21, Height: 10}, false},
		{"ends past the bottom", Rect{X: 0, Y: 1075, Width: 10, Height: 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := screen.ContainsRect(tt.inner); got != tt.want {
				t.Errorf("ContainsRect(%+v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}
