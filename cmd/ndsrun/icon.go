// icon.go - Window icon derived from the booted ROM's own top screen

package main

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/coldsilicon/ndscore/core"
)

// buildWindowIcons downsamples the console's top framebuffer (whatever
// the booted ROM has drawn by the time the window opens — typically its
// own logo or title screen) into the small set of sizes
// ebiten.SetWindowIcon wants, rather than shipping a fixed icon asset.
func buildWindowIcons(c *core.Console) []image.Image {
	src := framebufferToRGBA(c.FramebufferA())

	sizes := []int{16, 32, 48}
	icons := make([]image.Image, len(sizes))
	for i, size := range sizes {
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		icons[i] = dst
	}
	return icons
}

func framebufferToRGBA(fb *[core.ScreenWidth * core.ScreenHeight]uint16) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, core.ScreenWidth, core.ScreenHeight))
	for i, px := range fb {
		r := uint8(px&0x1F) << 3
		g := uint8((px>>5)&0x1F) << 3
		b := uint8((px>>10)&0x1F) << 3
		img.Set(i%core.ScreenWidth, i/core.ScreenWidth, color.RGBA{R: r, G: g, B: b, A: 0xFF})
	}
	return img
}
