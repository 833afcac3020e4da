package mosaic

import (
	"errors"
	"image"
	"image/color"

	"github.com/viant/sqlite-mosaic/rgb"
)

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("mosaic: image has no pixels")

// MeanColor returns the per-channel integer mean of img, truncating. Alpha
// is ignored; channels are read non-premultiplied.
func MeanColor(img image.Image) (rgb.Point, error) {
	bounds := img.Bounds()
	count := bounds.Dx() * bounds.Dy()
	if count <= 0 {
		return rgb.Point{}, ErrEmptyImage
	}
	var r, g, b int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			r += int(c.R)
			g += int(c.G)
			b += int(c.B)
		}
	}
	return rgb.New(uint8(r/count), uint8(g/count), uint8(b/count)), nil
}
