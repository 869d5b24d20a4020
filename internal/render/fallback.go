package render

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/stlalpha/textmode/internal/buffer"
)

// RenderCPUFallback renders the full buffer (no scroll, no zoom) to an
// imgWidth x imgHeight RGBA image with no CRT effects, for formats that
// bypass the GPU path entirely: image export and thumbnail generation
// (spec §4.10: "A CPU fallback is required ... renders to an (img_width x
// img_height) RGBA buffer at 1x scale with no CRT effects"). golang.org/x
// /image/draw is present in the example pack's go.mod
// (IntuitionAmiga-IntuitionEngine) but unused by that repo's own code;
// it is wired here for exactly the kind of CPU-side image scaling it
// exists for, same promotion as gopher-lua in internal/animator.
func RenderCPUFallback(screen buffer.Screen, cache *Cache, imgWidth, imgHeight int) *image.RGBA {
	dims := screen.Dimensions()
	vp := Viewport{VisibleCols: dims.Width, VisibleRows: dims.Height, Zoom: 1}
	opts := DefaultOptions()
	opts.CaretVisible = false

	native := Render(screen, vp, cache, opts)
	if imgWidth <= 0 || imgHeight <= 0 {
		return native
	}
	if native.Bounds().Dx() == imgWidth && native.Bounds().Dy() == imgHeight {
		return native
	}

	out := image.NewRGBA(image.Rect(0, 0, imgWidth, imgHeight))
	draw.NearestNeighbor.Scale(out, out.Bounds(), native, native.Bounds(), draw.Over, nil)
	return out
}
