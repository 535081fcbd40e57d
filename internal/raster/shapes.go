package raster

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/vector"
)

// circleMask is an alpha mask for a disc of radius r around p.
type circleMask struct {
	p image.Point
	r int
}

func (c *circleMask) ColorModel() color.Model { return color.AlphaModel }

func (c *circleMask) Bounds() image.Rectangle {
	return image.Rect(c.p.X-c.r, c.p.Y-c.r, c.p.X+c.r, c.p.Y+c.r)
}

func (c *circleMask) At(x, y int) color.Color {
	xx, yy, rr := float64(x-c.p.X)+0.5, float64(y-c.p.Y)+0.5, float64(c.r)
	if xx*xx+yy*yy < rr*rr {
		return color.Alpha{A: 255}
	}
	return color.Alpha{A: 0}
}

func fillCircle(dst draw.Image, center image.Point, radius int, c color.Color) {
	mask := &circleMask{p: center, r: radius}
	draw.DrawMask(dst, mask.Bounds(), image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// drawChevron paints a downward chevron centred on (cx, cy).
func drawChevron(dst draw.Image, cx, cy int, c color.Color) {
	const w, h = 64, 48
	z := vector.NewRasterizer(w, h)
	ox, oy := float32(w/2), float32(h/2)
	z.MoveTo(ox-30, oy-14)
	z.LineTo(ox, oy+16)
	z.LineTo(ox+30, oy-14)
	z.LineTo(ox+22, oy-22)
	z.LineTo(ox, oy)
	z.LineTo(ox-22, oy-22)
	z.ClosePath()

	r := image.Rect(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}
