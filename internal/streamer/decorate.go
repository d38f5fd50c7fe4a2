package streamer

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

const (
	// exactOverlayTint marks a true persistent tile's fallback; the weaker
	// correspondingTint marks its coarser/finer shadow.
	exactOverlayTint   = 0.7
	correspondingTint  = 0.5
	darkenFactor       = 0.2
	borderWidthPercent = 0.03
)

// borderColor is the semi-transparent dark border blended over overlay
// tile edges.
var borderColor = [4]uint8{40, 40, 40, 150}

// decorateOverlay derives the overlay visual from a tile image: every pixel
// darkened by darkenFactor, then a thin alpha-blended border. The source is
// not modified.
func decorateOverlay(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Copy(dst, image.Point{}, src, bounds, xdraw.Src, nil)

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			row[x] = uint8(float64(row[x]) * (1 - darkenFactor))
			row[x+1] = uint8(float64(row[x+1]) * (1 - darkenFactor))
			row[x+2] = uint8(float64(row[x+2]) * (1 - darkenFactor))
		}
	}

	borderWidth := int(float64(w) * borderWidthPercent)
	if borderWidth < 1 {
		borderWidth = 1
	}
	if borderWidth > 5 {
		borderWidth = 5
	}

	alpha := float64(borderColor[3]) / 255.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= borderWidth && x < w-borderWidth &&
				y >= borderWidth && y < h-borderWidth {
				continue
			}
			i := y*dst.Stride + x*4
			for c := 0; c < 3; c++ {
				dst.Pix[i+c] = uint8((1-alpha)*float64(dst.Pix[i+c]) + alpha*float64(borderColor[c]))
			}
		}
	}

	return dst
}
