package fetcher

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/skyatlas/tilestream/internal/tilemath"
)

// decodeTile decodes tile bytes and normalizes the result to the standard
// tile size so downstream decoration can assume square 256px images.
func decodeTile(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode tile image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() == tilemath.TileSize && b.Dy() == tilemath.TileSize {
		return img, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, tilemath.TileSize, tilemath.TileSize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}
