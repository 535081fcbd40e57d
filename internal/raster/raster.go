// Package raster draws render layouts onto square RGBA canvases.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"carouselcraft.io/carousel-studio/internal/render"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	Size       = 1080
	padding    = 96
	blockGap   = 36
	bulletGap  = 20
	indent     = 56
	avatarSize = 200
	ringWidth  = 8
)

// Rasterizer is safe for concurrent use. Every Draw builds its own font faces.
type Rasterizer struct {
	fonts  *fontSet
	loader ImageLoader
}

func NewRasterizer(loader ImageLoader) (*Rasterizer, error) {
	fonts, err := newFontSet()
	if err != nil {
		return nil, err
	}
	if loader == nil {
		loader = NewHTTPImageLoader()
	}
	return &Rasterizer{fonts: fonts, loader: loader}, nil
}

// Surface is a laid-out slide ready to be captured.
type Surface struct {
	r      *Rasterizer
	layout render.Layout
}

func (r *Rasterizer) Surface(l render.Layout) *Surface {
	return &Surface{r: r, layout: l}
}

var errNoRasterizer = errors.New("raster: surface has no rasterizer")

func (s *Surface) Capture(ctx context.Context) (image.Image, error) {
	if s == nil || s.r == nil {
		return nil, errNoRasterizer
	}
	return s.r.Draw(ctx, s.layout)
}

// Draw paints l onto a new Size×Size canvas. It fails only when a referenced
// image cannot be loaded or a font face cannot be built.
func (r *Rasterizer) Draw(ctx context.Context, l render.Layout) (*image.RGBA, error) {
	d := &Rasterizer{fonts: r.fonts.forDraw(), loader: r.loader}
	return d.draw(ctx, l)
}

func (r *Rasterizer) draw(ctx context.Context, l render.Layout) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, Size, Size))
	paintBackground(canvas, l.Background)

	// Shrink the type scale until the blocks fit between the paddings.
	scale := 1.0
	var placed []placedBlock
	for attempt := 0; attempt < 6; attempt++ {
		var height int
		var err error
		placed, height, err = r.measure(l, scale)
		if err != nil {
			return nil, err
		}
		if height <= Size-2*padding {
			break
		}
		scale *= 0.88
	}

	total := 0
	for i, pb := range placed {
		if i > 0 {
			total += blockGap
		}
		total += pb.height
	}
	y := padding + (Size-2*padding-total)/2
	if y < padding {
		y = padding
	}

	for _, pb := range placed {
		if err := r.drawBlock(ctx, canvas, l.Align, pb, y); err != nil {
			return nil, err
		}
		y += pb.height + blockGap
	}

	if err := r.drawOverlays(canvas, l); err != nil {
		return nil, err
	}
	return canvas, nil
}

type placedBlock struct {
	block  render.Block
	size   int
	height int
	lines  [][]textLine // per paragraph or bullet item
}

func scaled(style render.TextStyle, scale float64) int {
	return int(styleSizes[style]*scale + 0.5)
}

func (r *Rasterizer) measure(l render.Layout, scale float64) ([]placedBlock, int, error) {
	width := fixed.I(Size - 2*padding)
	var out []placedBlock
	total := 0

	for _, b := range l.Blocks {
		pb := placedBlock{block: b}
		switch v := b.(type) {
		case render.Text:
			pb.size = scaled(v.Style, scale)
			bold := v.Style == render.StyleDisplay || v.Style == render.StyleHeading || v.Style == render.StyleHighlight
			for i, p := range v.Paragraphs {
				lines, err := r.fonts.wrap(p, pb.size, bold, width)
				if err != nil {
					return nil, 0, err
				}
				pb.lines = append(pb.lines, lines)
				if i > 0 {
					pb.height += lineHeight(pb.size) / 2
				}
				pb.height += len(lines) * lineHeight(pb.size)
			}
		case render.BulletList:
			pb.size = scaled(render.StyleBody, scale)
			for i, item := range v.Items {
				lines, err := r.fonts.wrap(item, pb.size, false, width-fixed.I(indent))
				if err != nil {
					return nil, 0, err
				}
				pb.lines = append(pb.lines, lines)
				if i > 0 {
					pb.height += bulletGap
				}
				pb.height += len(lines) * lineHeight(pb.size)
			}
		case render.Avatar:
			pb.height = int(float64(avatarSize) * scale)
		}
		if len(out) > 0 {
			total += blockGap
		}
		total += pb.height
		out = append(out, pb)
	}
	return out, total, nil
}

func (r *Rasterizer) drawBlock(ctx context.Context, dst *image.RGBA, align render.Align, pb placedBlock, top int) error {
	switch v := pb.block.(type) {
	case render.Text:
		y := top
		for i, lines := range pb.lines {
			if i > 0 {
				y += lineHeight(pb.size) / 2
			}
			for _, ln := range lines {
				if err := r.drawLine(dst, ln, pb.size, v.Color, lineX(align, ln.width, padding, Size-2*padding), y); err != nil {
					return err
				}
				y += lineHeight(pb.size)
			}
		}
	case render.BulletList:
		// Lists are start aligned; a centred layout centres the whole list.
		widest := fixed.Int26_6(0)
		for _, lines := range pb.lines {
			for _, ln := range lines {
				if ln.width > widest {
					widest = ln.width
				}
			}
		}
		left := padding
		if align == render.AlignCenter {
			left = lineX(align, widest+fixed.I(indent), padding, Size-2*padding).Round()
		}

		y := top
		for i, lines := range pb.lines {
			if i > 0 {
				y += bulletGap
			}
			marker := textLine{segments: []segment{{text: v.Marker, bold: true}}}
			if err := r.drawLine(dst, marker, pb.size, v.MarkerColor, fixed.I(left), y); err != nil {
				return err
			}
			for _, ln := range lines {
				if err := r.drawLine(dst, ln, pb.size, v.Color, fixed.I(left+indent), y); err != nil {
					return err
				}
				y += lineHeight(pb.size)
			}
		}
	case render.Avatar:
		return r.drawAvatar(ctx, dst, v, align, pb.height, top)
	}
	return nil
}

func lineX(align render.Align, lineWidth fixed.Int26_6, left, width int) fixed.Int26_6 {
	if align == render.AlignStart {
		return fixed.I(left)
	}
	x := fixed.I(left) + (fixed.I(width)-lineWidth)/2
	if x < fixed.I(left) {
		return fixed.I(left)
	}
	return x
}

func (r *Rasterizer) drawLine(dst draw.Image, ln textLine, size int, c color.RGBA, x fixed.Int26_6, top int) error {
	regular, err := r.fonts.face(false, size)
	if err != nil {
		return err
	}
	bold, err := r.fonts.face(true, size)
	if err != nil {
		return err
	}
	baseline := fixed.I(top) + (fixed.I(lineHeight(size))+regular.Metrics().Ascent-regular.Metrics().Descent)/2

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c)}
	for _, seg := range ln.segments {
		d.Face = regular
		if seg.bold {
			d.Face = bold
		}
		d.Dot = fixed.Point26_6{X: x + seg.x, Y: baseline}
		d.DrawString(seg.text)
	}
	return nil
}

func (r *Rasterizer) drawAvatar(ctx context.Context, dst *image.RGBA, a render.Avatar, align render.Align, size, top int) error {
	cx := Size / 2
	if align == render.AlignStart {
		cx = padding + size/2
	}
	center := image.Pt(cx, top+size/2)
	radius := size / 2

	fillCircle(dst, center, radius, a.Ring)
	inner := radius - ringWidth

	if a.ImageURL != "" {
		img, err := r.loader.Load(ctx, a.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to load profile image: %w", err)
		}
		square := image.NewRGBA(image.Rect(0, 0, 2*inner, 2*inner))
		xdraw.CatmullRom.Scale(square, square.Bounds(), img, coverCrop(img.Bounds()), xdraw.Src, nil)
		mask := &circleMask{p: image.Pt(inner, inner), r: inner}
		target := image.Rect(center.X-inner, center.Y-inner, center.X+inner, center.Y+inner)
		draw.DrawMask(dst, target, square, image.Point{}, mask, image.Point{}, draw.Over)
		return nil
	}

	fillCircle(dst, center, inner, a.Fill)
	if a.Initials == "" {
		return nil
	}
	fontSize := size * 2 / 5
	p := render.Paragraph{Runs: []render.Run{{Text: a.Initials, Bold: true}}}
	lines, err := r.fonts.wrap(p, fontSize, true, fixed.I(2*inner))
	if err != nil {
		return err
	}
	x := fixed.I(center.X) - lines[0].width/2
	return r.drawLine(dst, lines[0], fontSize, a.Ring, x, center.Y-lineHeight(fontSize)/2)
}

// coverCrop returns the centred square of b.
func coverCrop(b image.Rectangle) image.Rectangle {
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

func (r *Rasterizer) drawOverlays(dst *image.RGBA, l render.Layout) error {
	const margin = 64
	if l.Signature != nil {
		size := scaled(render.StyleCaption, 1.0)
		lines, err := r.fonts.wrap(render.Paragraph{Runs: []render.Run{{Text: l.Signature.Text}}}, size, false, fixed.I(Size/2))
		if err != nil {
			return err
		}
		x := fixed.I(margin)
		if l.Signature.Corner == render.CornerBottomRight {
			x = fixed.I(Size-margin) - lines[0].width
		}
		if err := r.drawLine(dst, lines[0], size, l.Signature.Color, x, Size-margin-lineHeight(size)); err != nil {
			return err
		}
	}

	if l.Counter != nil {
		size := 24
		lines, err := r.fonts.wrap(render.Paragraph{Runs: []render.Run{{Text: l.Counter.Text, Bold: true}}}, size, true, fixed.I(Size/2))
		if err != nil {
			return err
		}
		x := fixed.I(Size-48) - lines[0].width
		if err := r.drawLine(dst, lines[0], size, l.Counter.Color, x, Size-48-lineHeight(size)); err != nil {
			return err
		}
	}

	if l.Continuation {
		drawChevron(dst, Size/2, Size-44, l.ContinuationColor)
	}
	return nil
}

// paintBackground fills a solid colour or a 135° gradient running from the
// top-left corner to the bottom-right corner.
func paintBackground(dst *image.RGBA, bg render.Background) {
	if bg.Solid() {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg.From), image.Point{}, draw.Src)
		return
	}

	b := dst.Bounds()
	steps := b.Dx() + b.Dy() - 1
	ramp := make([]color.RGBA, steps)
	for i := range ramp {
		t := float64(i) / float64(steps-1)
		ramp[i] = color.RGBA{
			R: lerp(bg.From.R, bg.To.R, t),
			G: lerp(bg.From.G, bg.To.G, t),
			B: lerp(bg.From.B, bg.To.B, t),
			A: 0xff,
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, ramp[(x-b.Min.X)+(y-b.Min.Y)])
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
