package desktop

import "image"

// bgraToRGBA copies a top-down 32-bit BGRA buffer into an opaque RGBA image.
func bgraToRGBA(src []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	n := width * height * 4
	for i := 0; i+3 < n && i+3 < len(src); i += 4 {
		img.Pix[i] = src[i+2]
		img.Pix[i+1] = src[i+1]
		img.Pix[i+2] = src[i]
		img.Pix[i+3] = 255
	}
	return img
}
